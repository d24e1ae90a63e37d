package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/ai/mock"
	"github.com/poiesic/grantmatch/cache"
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/storage"
	"github.com/poiesic/grantmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queryEmbedding = []float32{1, 0}

func testMatcherConfig() Config {
	cfg := DefaultConfig()
	cfg.Rerank.Models = []string{"rerank-1", "rerank-2"}
	cfg.ScoringModel = "scorer"
	cfg.BatchDelay = time.Millisecond
	cfg.EmbedMaxAttempts = 2
	cfg.EmbedRetryBaseDelay = time.Millisecond
	return cfg
}

// testGrants returns three open grants whose embeddings all survive the
// similarity floor against queryEmbedding, shortlisted in id order.
func testGrants() []*core.Grant {
	closes := time.Now().UTC().AddDate(0, 6, 0)
	return []*core.Grant{
		{
			Id:           "g1",
			Title:        "AI Innovation Grant",
			Organization: "Vinnova",
			Description:  "Funding for artificial intelligence development",
			Embedding:    []float32{1, 0},
			ClosesAt:     closes,
		},
		{
			Id:           "g2",
			Title:        "Digital Health Grant",
			Organization: "Vinnova",
			Description:  "Applied AI in healthcare",
			Embedding:    []float32{0.99, 0.14106736},
			ClosesAt:     closes,
		},
		{
			Id:           "g3",
			Title:        "Green Energy Grant",
			Organization: "Energimyndigheten",
			Description:  "Renewable energy innovation funding",
			Embedding:    []float32{0.95, 0.3122499},
			ClosesAt:     closes,
		},
	}
}

func setupMatcher(t *testing.T, cfg Config, opts ...Option) (*Matcher, *mock.MockProvider) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	require.NoError(t, repo.AddGrants(context.Background(), testGrants()...))

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryEmbedding, nil
	}

	matcher, err := NewMatcher(repo, provider, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(matcher.Release)

	return matcher, provider
}

func TestNewMatcher(t *testing.T) {
	provider := mock.NewMockProvider()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	t.Run("valid configuration", func(t *testing.T) {
		m, err := NewMatcher(repo, provider, testMatcherConfig())
		require.NoError(t, err)
		assert.NotNil(t, m)
		m.Release()
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewMatcher(nil, provider, testMatcherConfig())
		assert.Equal(t, ErrGrantRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewMatcher(repo, nil, testMatcherConfig())
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	query := core.Query{Text: "AI healthcare research funding"}

	t.Run("rerank success scores every candidate via llm", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 90, 2, 70, 3, 40]", nil
		}

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Matches, 3)

		assert.Equal(t, "g1", result.Matches[0].GrantId)
		assert.InDelta(t, 0.9, result.Matches[0].Score, 1e-9)
		assert.Equal(t, core.MethodLLM, result.Matches[0].Method)
		assert.Contains(t, result.Matches[0].Reasons[0], "AI relevance score: 90/100")

		for i := 1; i < len(result.Matches); i++ {
			assert.GreaterOrEqual(t, result.Matches[i-1].Score, result.Matches[i].Score)
		}
		assert.Contains(t, result.Explanation, "Found 3 relevant grants")
	})

	t.Run("rerank populates the cache", func(t *testing.T) {
		scoreCache := cache.NewMemoryCache()
		matcher, provider := setupMatcher(t, testMatcherConfig(), WithCache(scoreCache))
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 90, 2, 70, 3, 40]", nil
		}

		_, err := matcher.Match(ctx, query)
		require.NoError(t, err)

		score, ok := scoreCache.Get(query, "g2")
		require.True(t, ok)
		assert.Equal(t, 70, score)
	})

	t.Run("rerank failure falls back to single-candidate scoring", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			if req.Model == "scorer" {
				return "85", nil
			}
			return "", errors.New("backend down")
		}

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Matches, 3)
		for _, m := range result.Matches {
			assert.Equal(t, core.MethodLLM, m.Method)
			assert.InDelta(t, 0.85, m.Score, 1e-9)
			assert.Contains(t, m.Reasons[0], "AI relevance score: 85/100")
		}
	})

	t.Run("cached scores are used before any scoring call", func(t *testing.T) {
		scoreCache := cache.NewMemoryCache()
		scoreCache.Put(query, "g1", 77)

		matcher, provider := setupMatcher(t, testMatcherConfig(), WithCache(scoreCache))
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			if req.Model == "scorer" {
				return "60", nil
			}
			return "", errors.New("backend down")
		}

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Matches, 3)

		byId := map[string]core.GrantMatch{}
		for _, m := range result.Matches {
			byId[m.GrantId] = m
		}
		assert.Equal(t, core.MethodCacheHit, byId["g1"].Method)
		assert.InDelta(t, 0.77, byId["g1"].Score, 1e-9)
		assert.Contains(t, byId["g1"].Reasons[0], "Cached AI analysis: 77/100")
		assert.Equal(t, core.MethodLLM, byId["g2"].Method)
	})

	t.Run("all llm paths failing uses the lexical scorer", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "", errors.New("everything down")
		}

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Matches, 3)
		for _, m := range result.Matches {
			assert.Equal(t, core.MethodLLMFallbackText, m.Method)
			assert.GreaterOrEqual(t, m.Score, 0.2)
			assert.LessOrEqual(t, m.Score, 0.95)
			assert.Contains(t, m.Reasons[0], "Semantic text matching")
		}
	})

	t.Run("rerank covering only some candidates backfills the rest", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			if req.Model == "scorer" {
				return "55", nil
			}
			return "[1, 90]", nil
		}

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Matches, 3)

		seen := map[string]int{}
		for _, m := range result.Matches {
			seen[m.GrantId]++
		}
		assert.Equal(t, map[string]int{"g1": 1, "g2": 1, "g3": 1}, seen)
	})

	t.Run("no open grants yields a valid empty result", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryRepository()
		require.NoError(t, err)
		defer func() {
			repo.Close()
			backend.Close()
		}()

		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return queryEmbedding, nil
		}

		matcher, err := NewMatcher(repo, provider, testMatcherConfig())
		require.NoError(t, err)
		defer matcher.Release()

		result, err := matcher.Match(ctx, query)
		require.NoError(t, err)
		assert.Empty(t, result.Matches)
		assert.Equal(t, "No relevant grants found for your search", result.Explanation)
	})

	t.Run("embedding failure aborts the request", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		}

		_, err := matcher.Match(ctx, query)
		assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		matcher, _ := setupMatcher(t, testMatcherConfig())
		_, err := matcher.Match(ctx, core.Query{Text: "   "})
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
	})

	t.Run("organization filter narrows candidates", func(t *testing.T) {
		matcher, provider := setupMatcher(t, testMatcherConfig())
		provider.GetMockChatModel().GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 90, 2, 70]", nil
		}

		result, err := matcher.Match(ctx, core.Query{
			Text:          "AI research",
			Organizations: []string{"Vinnova"},
		})
		require.NoError(t, err)
		require.Len(t, result.Matches, 2)
		for _, m := range result.Matches {
			assert.NotEqual(t, "g3", m.GrantId)
		}
	})
}

var _ storage.GrantRepository = (*failingRepo)(nil)

// failingRepo fails every operation, for exercising store errors.
type failingRepo struct{}

func (f *failingRepo) AddGrants(ctx context.Context, grants ...*core.Grant) error { return assert.AnError }
func (f *failingRepo) GetGrant(ctx context.Context, id string) (*core.Grant, error) {
	return nil, assert.AnError
}
func (f *failingRepo) ListOpen(ctx context.Context, filter storage.GrantFilter) ([]*core.Grant, error) {
	return nil, assert.AnError
}
func (f *failingRepo) Count(ctx context.Context) (int, error) { return 0, assert.AnError }
func (f *failingRepo) Close() error                           { return nil }

func TestMatchStoreFailure(t *testing.T) {
	provider := mock.NewMockProvider()
	matcher, err := NewMatcher(&failingRepo{}, provider, testMatcherConfig())
	require.NoError(t, err)
	defer matcher.Release()

	_, err = matcher.Match(context.Background(), core.Query{Text: "anything"})
	assert.ErrorIs(t, err, assert.AnError)
}
