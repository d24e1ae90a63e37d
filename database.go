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


package grantmatch

import (
	"log/slog"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/ai/openai"
	"github.com/poiesic/grantmatch/cache"
	"github.com/poiesic/grantmatch/match"
	"github.com/poiesic/grantmatch/storage"
	"github.com/poiesic/grantmatch/storage/badger"
)

// Database bundles the grant store, the AI provider, and the shared
// relevance cache behind one handle. Matchers created from the same
// Database share the cache, so repeated queries reuse LLM scores across
// requests.
type Database struct {
	backend   *badger.Backend
	grantRepo storage.GrantRepository
	provider  ai.AIProvider
	cache     cache.ScoreCache
	matchCfg  match.Config
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	matchConfig  *match.Config
	cacheOptions []cache.MemoryOption
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithMatchConfig overrides the default matching configuration.
// Backend model lists in the AI config still take precedence.
func WithMatchConfig(cfg match.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.matchConfig = &cfg
	}
}

// WithCacheOptions configures the shared relevance cache, e.g. to bound
// its size.
func WithCacheOptions(opts ...cache.MemoryOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.cacheOptions = opts
	}
}

// NewDatabase opens the grant store at filePath and wires the AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	matchCfg := match.DefaultConfig()
	if options.matchConfig != nil {
		matchCfg = *options.matchConfig
	}
	// The AI config is the single source of truth for backend identities.
	matchCfg.Rerank.Models = options.aiConfig.RerankModels
	matchCfg.ScoringModel = options.aiConfig.ScoringModel

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create grant repository
	grantRepo, err := badger.NewGrantRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		grantRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		grantRepo: grantRepo,
		provider:  provider,
		cache:     cache.NewMemoryCache(options.cacheOptions...),
		matchCfg:  matchCfg,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.grantRepo.Close(); err != nil {
		db.logger.Error("error closing grant repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// GrantRepository exposes the underlying grant store, e.g. for seeding.
func (db *Database) GrantRepository() storage.GrantRepository {
	return db.grantRepo
}

// NewMatcher creates a matcher sharing this database's store, provider,
// and relevance cache.
func (db *Database) NewMatcher(opts ...match.Option) (*match.Matcher, error) {
	matcherOpts := append([]match.Option{match.WithCache(db.cache)}, opts...)
	return match.NewMatcher(db.grantRepo, db.provider, db.matchCfg, matcherOpts...)
}
