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


package lexical

import (
	"math"
	"strings"

	"github.com/poiesic/grantmatch/core"
)

const (
	exactWeight     = 1.0
	substringWeight = 0.7
	fuzzyWeight     = 0.6
	fuzzyThreshold  = 0.8

	// A text-only heuristic should never claim near-certain or near-zero
	// confidence the way a validated LLM judgment might.
	minPercent = 20
	maxPercent = 95

	// neutralScore is returned for empty or all-stopword queries.
	neutralScore = 0.35
)

// Score rates how well a grant's text matches the query, in [0, 1].
//
// It is a pure function: no I/O, no errors for any input. Matching is
// three-tiered per query token (exact, substring, edit-distance) with a
// context bonus for curated bilingual domain terms. An empty or
// all-stopword query yields a fixed neutral default.
func Score(query string, grant *core.Grant) float64 {
	queryTokens := tokenize(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return neutralScore
	}

	corpus := strings.ToLower(strings.Join([]string{
		grant.Title,
		grant.Description,
		grant.Organization,
		grant.Eligibility,
		grant.Evaluation,
		strings.Join(grant.Keywords, " "),
		strings.Join(grant.Sectors, " "),
		strings.Join(grant.EligibleOrgs, " "),
	}, " "))
	corpusTokens := tokenize(corpus)

	var matchScore, contextScore float64
	for _, queryToken := range queryTokens {
		bestMatch := 0.0
		for _, corpusToken := range corpusTokens {
			switch {
			case corpusToken == queryToken:
				bestMatch = math.Max(bestMatch, exactWeight)
			case strings.Contains(corpusToken, queryToken) || strings.Contains(queryToken, corpusToken):
				bestMatch = math.Max(bestMatch, substringWeight)
			case similarity(queryToken, corpusToken) > fuzzyThreshold:
				bestMatch = math.Max(bestMatch, fuzzyWeight)
			}
			if bestMatch == exactWeight {
				break
			}
		}

		matchScore += bestMatch

		if domainTerms[queryToken] {
			contextScore += bestMatch * 0.5
		}
	}

	basePercent := int(math.Round(matchScore / float64(len(queryTokens)) * 100))
	if basePercent > 100 {
		basePercent = 100
	}
	contextBonus := int(math.Round(math.Min(20, contextScore*10)))

	percent := basePercent + contextBonus
	if percent < minPercent {
		percent = minPercent
	}
	if percent > maxPercent {
		percent = maxPercent
	}

	return float64(percent) / 100
}

// tokenize splits text on whitespace and punctuation, discarding tokens of
// two characters or fewer and bilingual stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ',', ';', ':', '.', '!', '?', '(', ')', '-', '"', '\'', '/':
			return true
		}
		return false
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.TrimSpace(field)
		if len(token) <= 2 {
			continue
		}
		if stopWords[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// similarity returns 1 - normalized Levenshtein distance, in [0, 1].
func similarity(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	distance := levenshtein(longer, shorter)
	return float64(len(longer)-distance) / float64(len(longer))
}

// levenshtein computes the edit distance between two strings using a
// single-row dynamic programming table.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, lb+1)
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
