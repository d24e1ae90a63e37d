// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/core"
)

const scoreSystemPrompt = `You are an expert grant matching AI with advanced contextual understanding. You interpret typos, informal language, and mixed Swedish/English queries. You respond with a single number, nothing else.`

// buildScorePrompt renders the single-candidate evaluation prompt.
func buildScorePrompt(query core.Query, grant *core.Grant) string {
	var b strings.Builder

	fmt.Fprintf(&b, "USER QUERY (analyze for intent, context, and needs):\n%q\n\n", query.NormalizedText())
	fmt.Fprintf(&b, "GRANT TO EVALUATE:\n")
	fmt.Fprintf(&b, "Title: %s\n", orNA(grant.Title))
	fmt.Fprintf(&b, "Organization: %s\n", orNA(grant.Organization))
	fmt.Fprintf(&b, "Description: %s\n", orNA(grant.Description))
	fmt.Fprintf(&b, "Eligibility: %s\n", orNA(grant.Eligibility))
	fmt.Fprintf(&b, "Keywords: %s\n", orNA(strings.Join(grant.Keywords, ", ")))
	fmt.Fprintf(&b, "Industry Sectors: %s\n", orNA(strings.Join(grant.Sectors, ", ")))
	fmt.Fprintf(&b, "Eligible Organizations: %s\n", orNA(strings.Join(grant.EligibleOrgs, ", ")))
	fmt.Fprintf(&b, "Evaluation Criteria: %s\n", orNA(grant.Evaluation))
	if grant.FundingMax > 0 {
		fmt.Fprintf(&b, "Funding Range: %d–%d %s\n", grant.FundingMin, grant.FundingMax, orNA(grant.Currency))
	}

	b.WriteString(`
ANALYSIS FRAMEWORK:
1. INTENT MATCHING: Does the grant's purpose align with what the user is trying to achieve?
2. CONTEXTUAL RELEVANCE: Does the overall context and domain match the user's needs?
3. ELIGIBILITY ALIGNMENT: Can the user realistically qualify for this grant?
4. SEMANTIC SIMILARITY: Are the concepts and themes semantically related?
5. PRACTICAL SUITABILITY: Would this grant practically help the user achieve their goals?

SCORING GUIDELINES:
- 90-100: Perfect match - user's needs directly align with grant purpose and eligibility
- 70-89: Good match - clear relevance with some limitations
- 50-69: Moderate match - some relevance but significant gaps
- 30-49: Poor match - minimal relevance or incompatibility
- 0-29: No match - completely irrelevant or impossible to qualify

Return ONLY a number between 0-100.`)

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

var firstNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseScore extracts a 0-100 score from a scoring response. The first
// number in the text wins, tolerating surrounding words and punctuation.
// Out-of-range or absent numbers are rejected; the caller falls back to
// deterministic text scoring rather than guessing.
func parseScore(response string) (int, error) {
	text := strings.TrimSpace(response)
	matched := firstNumber.FindString(text)
	if matched == "" {
		return 0, fmt.Errorf("%w: %q", ErrScoreNotFound, text)
	}

	value, err := strconv.ParseFloat(matched, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrScoreNotFound, text)
	}

	score := int(math.Round(value))
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: %d out of range", core.ErrScoreOutOfRange, score)
	}
	return score, nil
}

// scoreSingle asks the scoring model to rate one grant against the query.
func (m *Matcher) scoreSingle(ctx context.Context, query core.Query, grant *core.Grant) (int, error) {
	response, err := m.provider.ChatModel().GenerateText(ctx, ai.TextRequest{
		Model:       m.cfg.ScoringModel,
		System:      scoreSystemPrompt,
		Prompt:      buildScorePrompt(query, grant),
		Temperature: m.cfg.ScoringTemperature,
	})
	if err != nil {
		return 0, err
	}
	return parseScore(response)
}
