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


package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/core"
)

// Config holds the tunables of the whole-shortlist reranking stage.
type Config struct {
	// Models is the ordered backend list, most to least capable. Each is
	// tried in turn until one returns a parseable response.
	Models []string

	// MaxDescriptionLen caps per-grant description length in the prompt.
	MaxDescriptionLen int

	// Temperature for the backend call. Kept low: this is a scoring task,
	// not a generative one.
	Temperature float64

	// Timeout bounds each individual backend attempt.
	Timeout time.Duration
}

// DefaultConfig returns the production reranking configuration, inheriting
// the backend chain from the AI layer defaults.
func DefaultConfig() Config {
	return Config{
		Models:            ai.DefaultConfig().RerankModels,
		MaxDescriptionLen: 200,
		Temperature:       0.1,
		Timeout:           30 * time.Second,
	}
}

// Reranker refines shortlist scores with a single LLM call per backend
// attempt. Backends are tried sequentially; the first parseable response
// wins and no further backends are consulted.
type Reranker struct {
	chat   ai.ChatModel
	cfg    Config
	logger *slog.Logger
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reranker) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewReranker creates a reranker backed by the given chat model.
func NewReranker(chat ai.ChatModel, cfg Config, opts ...Option) (*Reranker, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	if len(cfg.Models) == 0 {
		return nil, ErrNoModelsConfigured
	}

	r := &Reranker{
		chat:   chat,
		cfg:    cfg,
		logger: slog.Default().With("component", "reranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Rerank scores the shortlist against the query and returns refined scores
// in [0, 1] keyed by grant ID. Simplified IDs the backend hallucinates are
// skipped with a warning; they never fail the attempt. Returns
// ErrRerankUnavailable only after every backend has failed.
//
// An empty shortlist returns an empty map without any backend call.
func (r *Reranker) Rerank(ctx context.Context, query core.Query, shortlist []*core.Grant) (map[string]float64, error) {
	if len(shortlist) == 0 {
		return map[string]float64{}, nil
	}

	prompt, idMap := buildPrompt(query, shortlist, r.cfg.MaxDescriptionLen)

	var lastErr error
	for _, model := range r.cfg.Models {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		scores, err := r.attempt(ctx, model, prompt, idMap)
		if err != nil {
			r.logger.Warn("rerank backend failed",
				"model", model,
				"err", err)
			lastErr = err
			continue
		}

		r.logger.Debug("rerank succeeded",
			"model", model,
			"scored", len(scores))
		return scores, nil
	}

	return nil, fmt.Errorf("%w: last error: %v", ErrRerankUnavailable, lastErr)
}

// attempt issues one backend call and maps the response back to real IDs.
func (r *Reranker) attempt(ctx context.Context, model, prompt string, idMap map[int]string) (map[string]float64, error) {
	attemptCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	response, err := r.chat.GenerateText(attemptCtx, ai.TextRequest{
		Model:       model,
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	entries, err := parseScores(response)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(entries))
	for _, e := range entries {
		grantId, ok := idMap[e.ID]
		if !ok {
			r.logger.Warn("backend returned unknown candidate id",
				"model", model,
				"id", e.ID)
			continue
		}
		scores[grantId] = core.ClampScore(e.Score / 100)
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrMalformedResponse)
	}
	return scores, nil
}
