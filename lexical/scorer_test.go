package lexical

import (
	"testing"

	"github.com/poiesic/grantmatch/core"
	"github.com/stretchr/testify/assert"
)

func testGrant() *core.Grant {
	return &core.Grant{
		Id:           "g1",
		Title:        "Digital Innovation Grant",
		Description:  "Funding for artificial intelligence development projects",
		Organization: "Vinnova",
		Eligibility:  "Small and medium enterprises registered in Sweden",
		Keywords:     []string{"innovation", "digitalisering"},
		Sectors:      []string{"technology"},
		EligibleOrgs: []string{"SME", "startup"},
	}
}

func TestScore(t *testing.T) {
	t.Run("empty query returns neutral default", func(t *testing.T) {
		assert.Equal(t, 0.35, Score("", testGrant()))
		assert.Equal(t, 0.35, Score("   ", testGrant()))
	})

	t.Run("all-stopword query returns neutral default", func(t *testing.T) {
		assert.Equal(t, 0.35, Score("och för med the and", testGrant()))
	})

	t.Run("exact token overlap scores high", func(t *testing.T) {
		score := Score("artificial intelligence development", testGrant())
		assert.GreaterOrEqual(t, score, 0.9)
		assert.LessOrEqual(t, score, 0.95)
	})

	t.Run("unrelated query stays at the lower bound", func(t *testing.T) {
		assert.Equal(t, 0.20, Score("marine biology fieldwork", testGrant()))
	})

	t.Run("cross-language query yields a nonzero score", func(t *testing.T) {
		score := Score("bidrag för AI-utveckling", testGrant())
		assert.Greater(t, score, 0.0)
	})

	t.Run("substring match counts at reduced weight", func(t *testing.T) {
		g := &core.Grant{
			Id:          "g3",
			Description: "Stöd till innovationsprojekt inom industrin",
		}
		score := Score("innovation", g)
		// 0.7 tier plus domain-term context bonus.
		assert.InDelta(t, 0.74, score, 0.011)
	})

	t.Run("typos are tolerated via edit distance", func(t *testing.T) {
		g := &core.Grant{Id: "g2", Title: "Research excellence program"}
		score := Score("reseerch", g)
		assert.Greater(t, score, 0.35)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		g := testGrant()
		assert.Equal(t, Score("digital innovation", g), Score("digital innovation", g))
	})

	t.Run("score is always within the clamp band or neutral", func(t *testing.T) {
		queries := []string{
			"", "innovation", "xyzzy plugh", "hållbarhet energi klimat",
			"digital digital digital", "a b c",
		}
		for _, q := range queries {
			score := Score(q, testGrant())
			ok := score == 0.35 || (score >= 0.20 && score <= 0.95)
			assert.True(t, ok, "query %q scored %v", q, score)
		}
	})

	t.Run("grant with no text still scores", func(t *testing.T) {
		g := &core.Grant{Id: "bare"}
		assert.Equal(t, 0.20, Score("innovation funding", g))
	})
}

func TestTokenize(t *testing.T) {
	t.Run("drops short tokens and stopwords", func(t *testing.T) {
		tokens := tokenize("ai och innovation för sme")
		assert.Equal(t, []string{"innovation", "sme"}, tokens)
	})

	t.Run("splits on punctuation", func(t *testing.T) {
		tokens := tokenize("research, development; (funding)!")
		assert.Equal(t, []string{"research", "development", "funding"}, tokens)
	})

	t.Run("hyphenated compounds split", func(t *testing.T) {
		tokens := tokenize("ai-utveckling")
		assert.Equal(t, []string{"utveckling"}, tokens)
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, similarity("innovation", "innovation"))
	})

	t.Run("single edit", func(t *testing.T) {
		assert.InDelta(t, 0.9, similarity("innovation", "inovation"), 1e-9)
	})

	t.Run("disjoint strings", func(t *testing.T) {
		assert.Less(t, similarity("abc", "xyz"), 0.5)
	})
}
