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


package rank

import (
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/grantmatch/core"
)

// Config centralizes the tuned constants of the similarity ranking stage.
// The defaults are empirically tuned; tests may override individual fields.
type Config struct {
	// Amplification spreads the typically narrow real-world cosine range
	// (~0.1-0.5) across a more usable scale before rescaling.
	Amplification float64

	// CeilingHighThreshold is the amplified similarity at or above which the
	// best match earns the full ceiling of 1.0.
	CeilingHighThreshold float64

	// CeilingLowThreshold is the amplified similarity at or below which the
	// best match is capped at CeilingMin.
	CeilingLowThreshold float64

	// CeilingMin and CeilingMax bound the dynamic per-request ceiling.
	CeilingMin float64
	CeilingMax float64

	// DomesticBoost is added to every candidate outside the foreign/EU
	// organization category, capped at 1.0.
	DomesticBoost float64

	// Floor drops candidates whose final score is at or below this value.
	Floor float64

	// TopK truncates the shortlist forwarded to reranking.
	TopK int
}

// DefaultConfig returns the production ranking constants.
func DefaultConfig() Config {
	return Config{
		Amplification:        8.0,
		CeilingHighThreshold: 4.0,
		CeilingLowThreshold:  1.0,
		CeilingMin:           0.5,
		CeilingMax:           1.0,
		DomesticBoost:        0.2,
		Floor:                0.2,
		TopK:                 25,
	}
}

// Scored pairs a grant with its raw amplified similarity, its rescaled
// base score (pre-boost, on the dynamic ceiling scale), and its final score.
type Scored struct {
	Grant *core.Grant
	Raw   float64
	Base  float64
	Score float64
}

// Ranker performs first-pass retrieval: cosine similarity against every
// candidate, request-relative rescaling onto a dynamic ceiling, a domestic
// source boost, and floor/top-K selection.
//
// Rank is a pure function of its inputs; the ranker holds only configuration.
type Ranker struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRanker creates a ranker with the given configuration.
func NewRanker(cfg Config, opts ...Option) *Ranker {
	r := &Ranker{
		cfg:    cfg,
		logger: slog.Default().With("component", "similarity-ranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every candidate against the query embedding and returns the
// shortlist, ordered by score descending.
//
// Candidates with malformed or missing embeddings get raw similarity 0 and
// are almost always removed by the floor; they never cause an error.
// An empty candidate set yields an empty shortlist.
func (r *Ranker) Rank(queryEmbedding []float32, candidates []*core.Grant) []Scored {
	if len(candidates) == 0 {
		return []Scored{}
	}

	// Cosine similarity can be negative, so the maximum must come from the
	// distribution itself.
	scored := make([]Scored, 0, len(candidates))
	maxRaw := math.Inf(-1)
	for _, grant := range candidates {
		raw := Cosine(queryEmbedding, grant.Embedding) * r.cfg.Amplification
		if raw > maxRaw {
			maxRaw = raw
		}
		scored = append(scored, Scored{Grant: grant, Raw: raw})
	}

	ceiling := r.ceiling(maxRaw)
	r.logger.Debug("rescaling similarity scores",
		"candidates", len(candidates),
		"maxRaw", maxRaw,
		"ceiling", ceiling)

	// Transpose so the best raw score lands exactly on the ceiling,
	// preserving relative ordering and spacing.
	shift := maxRaw - ceiling
	kept := scored[:0]
	for _, s := range scored {
		score := s.Raw - shift
		if score < 0 {
			score = 0
		}
		if score > ceiling {
			score = ceiling
		}
		s.Base = score

		if !s.Grant.IsForeign() {
			score += r.cfg.DomesticBoost
			if score > 1.0 {
				score = 1.0
			}
		}

		if score <= r.cfg.Floor {
			continue
		}
		s.Score = score
		kept = append(kept, s)
	}

	slices.SortStableFunc(kept, func(a, b Scored) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(kept) > r.cfg.TopK {
		kept = kept[:r.cfg.TopK]
	}

	return kept
}

// ceiling maps the best amplified similarity of a request onto the dynamic
// per-request maximum score. Absolute cosine similarity is not comparable
// across queries, so the ceiling reflects how confident the best match is.
func (r *Ranker) ceiling(maxRaw float64) float64 {
	switch {
	case maxRaw >= r.cfg.CeilingHighThreshold:
		return r.cfg.CeilingMax
	case maxRaw <= r.cfg.CeilingLowThreshold:
		return r.cfg.CeilingMin
	default:
		span := r.cfg.CeilingHighThreshold - r.cfg.CeilingLowThreshold
		frac := (maxRaw - r.cfg.CeilingLowThreshold) / span
		return r.cfg.CeilingMin + frac*(r.cfg.CeilingMax-r.cfg.CeilingMin)
	}
}
