package rerank

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/ai/mock"
	"github.com/poiesic/grantmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Models = []string{"model-a", "model-b", "model-c"}
	return cfg
}

func shortlist(n int) []*core.Grant {
	grants := make([]*core.Grant, n)
	for i := range grants {
		grants[i] = &core.Grant{
			Id:           "grant-" + strconv.Itoa(i+1),
			Title:        "Grant " + strconv.Itoa(i+1),
			Organization: "Vinnova",
			Description:  "Funding for innovation projects",
		}
	}
	return grants
}

func TestNewReranker(t *testing.T) {
	chat := mock.NewMockChatModel()

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil chat model", func(t *testing.T) {
		_, err := NewReranker(nil, testConfig())
		assert.Equal(t, ErrChatModelRequired, err)
	})

	t.Run("no models configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.Models = nil
		_, err := NewReranker(chat, cfg)
		assert.Equal(t, ErrNoModelsConfigured, err)
	})
}

func TestRerank(t *testing.T) {
	ctx := context.Background()
	query := core.Query{Text: "AI healthcare research funding"}

	t.Run("first backend success wins", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 90, 2, 40]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, shortlist(2))
		require.NoError(t, err)
		assert.InDelta(t, 0.9, scores["grant-1"], 1e-9)
		assert.InDelta(t, 0.4, scores["grant-2"], 1e-9)
		assert.Equal(t, 1, chat.CallCount())
	})

	t.Run("truncated response advances to the next backend", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			if req.Model == "model-a" {
				return "[1, 85, 2, 40, 7, 8", nil
			}
			return "[1, 85, 2, 40]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, shortlist(2))
		require.NoError(t, err)
		assert.Len(t, scores, 2)
		assert.Equal(t, []string{"model-a", "model-b"}, chat.ModelsCalled())
	})

	t.Run("backend error advances to the next backend", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			if req.Model != "model-c" {
				return "", errors.New("rate limited")
			}
			return "[1, 60]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, shortlist(1))
		require.NoError(t, err)
		assert.InDelta(t, 0.6, scores["grant-1"], 1e-9)
		assert.Equal(t, 3, chat.CallCount())
	})

	t.Run("all backends failing returns ErrRerankUnavailable", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "", errors.New("unavailable")
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		_, err = r.Rerank(ctx, query, shortlist(2))
		assert.ErrorIs(t, err, ErrRerankUnavailable)
		assert.Equal(t, 3, chat.CallCount())
	})

	t.Run("hallucinated ids are skipped", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 80, 99, 50]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, shortlist(1))
		require.NoError(t, err)
		assert.Len(t, scores, 1)
		assert.InDelta(t, 0.8, scores["grant-1"], 1e-9)
	})

	t.Run("only hallucinated ids fails the attempt", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[98, 80, 99, 50]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		_, err = r.Rerank(ctx, query, shortlist(1))
		assert.ErrorIs(t, err, ErrRerankUnavailable)
	})

	t.Run("scores above one hundred clamp to one", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
			return "[1, 150]", nil
		}

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, shortlist(1))
		require.NoError(t, err)
		assert.Equal(t, 1.0, scores["grant-1"])
	})

	t.Run("empty shortlist makes no backend call", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		scores, err := r.Rerank(ctx, query, nil)
		require.NoError(t, err)
		assert.Empty(t, scores)
		assert.Equal(t, 0, chat.CallCount())
	})

	t.Run("cancelled context stops the backend chain", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		r, err := NewReranker(chat, testConfig())
		require.NoError(t, err)

		_, err = r.Rerank(cancelled, query, shortlist(1))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, chat.CallCount())
	})
}

func TestBuildPrompt(t *testing.T) {
	query := core.Query{Text: "sustainability funding"}

	t.Run("simplified ids round-trip", func(t *testing.T) {
		grants := shortlist(5)
		_, idMap := buildPrompt(query, grants, 200)
		require.Len(t, idMap, 5)
		for i, g := range grants {
			assert.Equal(t, g.Id, idMap[i+1])
		}
	})

	t.Run("descriptions are truncated", func(t *testing.T) {
		g := &core.Grant{
			Id:          "long",
			Title:       "Verbose Grant",
			Description: strings.Repeat("x", 500),
		}
		prompt, _ := buildPrompt(query, []*core.Grant{g}, 200)
		assert.NotContains(t, prompt, strings.Repeat("x", 201))
		assert.Contains(t, prompt, strings.Repeat("x", 200)+"...")
	})

	t.Run("query text appears in prompt", func(t *testing.T) {
		prompt, _ := buildPrompt(query, shortlist(1), 200)
		assert.Contains(t, prompt, "sustainability funding")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "lon...", truncate("longer", 3))
	assert.Equal(t, "", truncate("   ", 10))
}
