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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1" or a local OpenAI-compatible server.
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API.
	ChatHost string

	// APIKey authenticates against the hosts. Local OpenAI-compatible
	// services accept any non-empty token.
	APIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// RerankModels is the ordered list of backends for whole-shortlist
	// reranking, most to least preferred. Each is tried in turn until one
	// returns a parseable response.
	RerankModels []string

	// ScoringModel is the backend used for single-candidate 0-100 scoring
	// on the fallback path.
	ScoringModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat completion service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithAPIKey sets the API key for both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRerankModels sets the ordered rerank backend list.
func WithRerankModels(models ...string) ConfigOption {
	return func(c *Config) {
		c.RerankModels = models
	}
}

// WithScoringModel sets the single-candidate scoring model identifier.
func WithScoringModel(model string) ConfigOption {
	return func(c *Config) {
		c.ScoringModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for OpenAI-compatible
// services.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "https://api.openai.com/v1",
		ChatHost:       "https://api.openai.com/v1",
		APIKey:         "none",
		EmbeddingModel: "text-embedding-3-small",
		RerankModels:   []string{"gpt-4o-mini", "gpt-4.1-mini", "gpt-3.5-turbo"},
		ScoringModel:   "gpt-4o-mini",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithRerankModels("qwen2.5:7b", "qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.ChatHost != "" && !strings.HasSuffix(c.ChatHost, "/v1") {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/") + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if len(c.RerankModels) == 0 {
		return errors.New("ai config: at least one rerank model is required")
	}
	for _, m := range c.RerankModels {
		if m == "" {
			return errors.New("ai config: rerank model name cannot be empty")
		}
	}
	if c.ScoringModel == "" {
		return errors.New("ai config: ScoringModel is required")
	}
	return nil
}
