package rerank

import (
	"fmt"
	"strings"

	"github.com/poiesic/grantmatch/core"
)

const systemPrompt = `You are an expert grant matching AI. You judge how relevant each grant is to a user's funding need. You handle mixed Swedish/English queries, typos, and informal language. You respond with compact JSON only, never prose or markdown.`

// buildPrompt renders the whole-shortlist evaluation prompt. Candidates are
// referred to by simplified integer IDs (1..N) to keep the response format
// compact; the returned map translates them back to real grant IDs.
//
// Descriptions are truncated to bound prompt size deterministically
// regardless of how verbose individual grants are.
func buildPrompt(query core.Query, shortlist []*core.Grant, maxDescLen int) (string, map[int]string) {
	idMap := make(map[int]string, len(shortlist))

	var b strings.Builder
	fmt.Fprintf(&b, "USER QUERY:\n%q\n\nGRANTS TO EVALUATE:\n", query.NormalizedText())

	for i, grant := range shortlist {
		simplified := i + 1
		idMap[simplified] = grant.Id

		fmt.Fprintf(&b, "%d. %s (%s)\n", simplified, grant.Title, grant.Organization)
		if desc := truncate(grant.Description, maxDescLen); desc != "" {
			fmt.Fprintf(&b, "   %s\n", desc)
		}
		if len(grant.Keywords) > 0 {
			fmt.Fprintf(&b, "   Keywords: %s\n", strings.Join(grant.Keywords, ", "))
		}
	}

	fmt.Fprintf(&b, `
Score every grant 0-100 for relevance to the query (90-100 perfect match, 50-59 weak, 0-29 irrelevant).

Return ONLY a flat JSON array alternating grant number and score, nothing else.
Example for three grants: [1, 85, 2, 40, 3, 10]`)

	return b.String(), idMap
}

// truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
