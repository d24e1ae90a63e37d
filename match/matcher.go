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
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/cache"
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/rank"
	"github.com/poiesic/grantmatch/rerank"
	"github.com/poiesic/grantmatch/storage"
)

// Config holds the orchestrator tunables. Nested stage configs carry the
// stage-specific constants.
type Config struct {
	Rank   rank.Config
	Rerank rerank.Config

	// ScoringModel and ScoringTemperature apply to single-candidate
	// fallback scoring calls.
	ScoringModel       string
	ScoringTemperature float64

	// BatchSize and BatchDelay pace the per-candidate fallback loop
	// against third-party rate limits.
	BatchSize  int
	BatchDelay time.Duration

	// EmbedMaxAttempts and EmbedRetryBaseDelay control query embedding
	// retries. Embedding failure aborts the whole request.
	EmbedMaxAttempts    int
	EmbedRetryBaseDelay time.Duration
}

// DefaultConfig returns the production matching configuration.
func DefaultConfig() Config {
	return Config{
		Rank:                rank.DefaultConfig(),
		Rerank:              rerank.DefaultConfig(),
		ScoringModel:        ai.DefaultConfig().ScoringModel,
		ScoringTemperature:  0.1,
		BatchSize:           3,
		BatchDelay:          200 * time.Millisecond,
		EmbedMaxAttempts:    3,
		EmbedRetryBaseDelay: 500 * time.Millisecond,
	}
}

// Matcher runs the end-to-end pipeline: embed the query, similarity-rank
// the open grants, then refine the shortlist with the LLM rerank or the
// per-candidate fallback chain.
type Matcher struct {
	repo     storage.GrantRepository
	provider ai.AIProvider
	ranker   *rank.Ranker
	reranker *rerank.Reranker
	cache    cache.ScoreCache
	pool     *ants.Pool
	monitor  MatchMonitor
	cfg      Config
	logger   *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithMonitor sets a pipeline observer. Default is a no-op monitor.
func WithMonitor(monitor MatchMonitor) Option {
	return func(m *Matcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		m.monitor = monitor
		return nil
	}
}

// WithCache sets the relevance score cache.
// Default is a fresh unbounded in-memory cache.
func WithCache(c cache.ScoreCache) Option {
	return func(m *Matcher) error {
		if c == nil {
			c = cache.NewMemoryCache()
		}
		m.cache = c
		return nil
	}
}

// NewMatcher creates a matcher over the given repository and AI provider.
func NewMatcher(repo storage.GrantRepository, provider ai.AIProvider, cfg Config, opts ...Option) (*Matcher, error) {
	if repo == nil {
		return nil, ErrGrantRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	reranker, err := rerank.NewReranker(provider.ChatModel(), cfg.Rerank)
	if err != nil {
		return nil, err
	}

	poolSize := cfg.BatchSize
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		repo:     repo,
		provider: provider,
		ranker:   rank.NewRanker(cfg.Rank),
		reranker: reranker,
		cache:    cache.NewMemoryCache(),
		pool:     pool,
		monitor:  &noopMonitor{},
		cfg:      cfg,
		logger:   slog.Default().With("component", "matcher"),
	}
	for _, opt := range opts {
		if optErr := opt(m); optErr != nil {
			m.Release()
			return nil, optErr
		}
	}
	return m, nil
}

// Release frees the worker pool. The matcher must not be used afterwards.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

const (
	noMatchesExplanation = "No relevant grants found for your search"
)

// Match runs one request through the pipeline.
//
// Only embedding failure aborts the request; every downstream stage
// degrades to the next scoring path instead. An empty candidate set is a
// valid empty result, not an error.
func (m *Matcher) Match(ctx context.Context, query core.Query) (*core.MatchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	m.monitor.Start(query)

	embedding, err := m.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	m.monitor.AfterEmbedding(len(embedding))

	candidates, err := m.repo.ListOpen(ctx, storage.GrantFilter{
		Organizations: query.Organizations,
		Category:      query.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("listing open grants: %w", err)
	}

	shortlist := m.ranker.Rank(embedding, candidates)
	m.monitor.AfterSimilarityRank(shortlist)
	m.logger.Debug("similarity shortlist ready",
		"candidates", len(candidates),
		"shortlisted", len(shortlist))

	if len(shortlist) == 0 {
		result := &core.MatchResult{
			Matches:     []core.GrantMatch{},
			Explanation: noMatchesExplanation,
		}
		m.monitor.Finish(result)
		return result, nil
	}

	matches := m.scoreShortlist(ctx, query, shortlist)

	slices.SortStableFunc(matches, func(a, b core.GrantMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	result := &core.MatchResult{
		Matches:     matches,
		Explanation: fmt.Sprintf("Found %d relevant grants matching your search", len(matches)),
	}
	m.monitor.Finish(result)
	return result, nil
}

// embedQuery embeds the query text with retry. Failure is fatal for the
// request: without a query vector there is no primary ranking path.
func (m *Matcher) embedQuery(ctx context.Context, query core.Query) ([]float32, error) {
	var embedding []float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embedding, embedErr = m.provider.Embedder().EmbedText(ctx, query.NormalizedText())
		return embedErr
	}, m.cfg.EmbedMaxAttempts, m.cfg.EmbedRetryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbeddingUnavailable, err)
	}
	return rank.Normalize(embedding), nil
}

// scoreShortlist refines the shortlist with the batch rerank, falling back
// to per-candidate scoring for anything the rerank did not cover.
func (m *Matcher) scoreShortlist(ctx context.Context, query core.Query, shortlist []rank.Scored) []core.GrantMatch {
	grants := make([]*core.Grant, len(shortlist))
	for i, s := range shortlist {
		grants[i] = s.Grant
	}

	scores, err := m.reranker.Rerank(ctx, query, grants)
	if err != nil {
		if !errors.Is(err, rerank.ErrRerankUnavailable) && !errors.Is(err, context.Canceled) {
			m.logger.Warn("unexpected rerank error", "err", err)
		}
		m.monitor.RerankFailed(err)
		return m.scoreFallback(ctx, query, grants)
	}
	m.monitor.RerankSucceeded(scores)

	matches := make([]core.GrantMatch, 0, len(grants))
	var uncovered []*core.Grant
	for _, grant := range grants {
		score, ok := scores[grant.Id]
		if !ok {
			uncovered = append(uncovered, grant)
			continue
		}

		percent := int(math.Round(score * 100))
		m.cache.Put(query, grant.Id, percent)
		matches = append(matches, core.GrantMatch{
			GrantId: grant.Id,
			Score:   score,
			Reasons: []string{fmt.Sprintf("AI relevance score: %d/100", percent)},
			Method:  core.MethodLLM,
		})
	}

	// Backends sometimes skip entries; those candidates still get exactly
	// one score via the per-candidate chain.
	if len(uncovered) > 0 {
		m.logger.Debug("rerank left candidates unscored",
			"uncovered", len(uncovered))
		matches = append(matches, m.scoreFallback(ctx, query, uncovered)...)
	}

	return matches
}
