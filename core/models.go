package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic 64-bit identifier derived from content.
// It is used for cache keys and storage digests.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Category restricts a query to a class of grant organizations.
type Category string

const (
	// CategoryAll matches grants from any organization.
	CategoryAll Category = "all"
	// CategoryPublic matches grants aimed at public-sector applicants.
	CategoryPublic Category = "public"
	// CategoryPrivate matches grants aimed at private-sector applicants.
	CategoryPrivate Category = "private"
)

// Query is an immutable description of what the user is looking for.
// It has no identity beyond its content; the normalized text participates
// in cache keys.
type Query struct {
	Text          string
	Organizations []string
	Category      Category
}

// NormalizedText returns the query text trimmed of surrounding whitespace.
// Matching on the body is exact and case-sensitive.
func (q Query) NormalizedText() string {
	return strings.TrimSpace(q.Text)
}

// IsEmpty reports whether the query carries no usable text.
func (q Query) IsEmpty() bool {
	return q.NormalizedText() == ""
}

// Grant is a read-only funding opportunity fetched from the grant store.
// Records are never mutated by the matching pipeline.
type Grant struct {
	Id           string
	Title        string
	Description  string
	Organization string
	Eligibility  string
	Evaluation   string
	Keywords     []string
	Sectors      []string
	EligibleOrgs []string
	FundingMin   int64
	FundingMax   int64
	Currency     string
	Embedding    []float32
	OpensAt      time.Time
	ClosesAt     time.Time
}

// IsOpen reports whether the grant can still be applied for at the given time.
// A zero closing date means the call has no published deadline and counts as open.
func (g *Grant) IsOpen(now time.Time) bool {
	if g.ClosesAt.IsZero() {
		return true
	}
	return g.ClosesAt.After(now)
}

// IsForeign reports whether the grant belongs to the foreign/EU organization
// category. Foreign grants do not receive the domestic relevance boost.
func (g *Grant) IsForeign() bool {
	org := strings.ToLower(g.Organization)
	return strings.Contains(org, "eu") || strings.Contains(org, "european")
}

// ScoringMethod identifies which pipeline stage produced a final score.
type ScoringMethod string

const (
	// MethodLLM means the score came from an LLM judgment (batch rerank or
	// single-candidate call).
	MethodLLM ScoringMethod = "llm"
	// MethodLLMFallbackText means the deterministic lexical scorer produced
	// the score after all LLM paths failed.
	MethodLLMFallbackText ScoringMethod = "llm-fallback-text"
	// MethodCacheHit means a previously computed LLM score was reused.
	MethodCacheHit ScoringMethod = "cache-hit"
)

// GrantMatch is one scored grant in the final ranking.
// Score is always in [0, 1] after clamping.
type GrantMatch struct {
	GrantId string
	Score   float64
	Reasons []string
	Method  ScoringMethod
}

// MatchResult is the consumer-facing envelope: ranked matches plus a
// human-readable explanation that distinguishes "nothing matched" from
// "the system is down".
type MatchResult struct {
	Matches     []GrantMatch
	Explanation string
}

// ClampScore clamps a score to the [0, 1] interval.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
