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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/grantmatch"
	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/ai/openai"
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/rank"
	"github.com/poiesic/grantmatch/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "grantmatch",
		Usage: "Relevance matching for grant funding opportunities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "match",
				Usage:     "Rank open grants by relevance to a query",
				ArgsUsage: "<query text>",
				Action:    matchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "API key for the AI services",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.StringSliceFlag{
						Name:  "rerank-model",
						Usage: "Rerank backend, most preferred first (repeatable)",
					},
					&cli.StringFlag{
						Name:  "scoring-model",
						Usage: "Single-candidate scoring model name",
					},
					&cli.StringSliceFlag{
						Name:  "org",
						Usage: "Restrict to grants from this organization (repeatable)",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Organization category filter (all, public, private)",
						Value: "all",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load grants from a JSON file, embedding each record",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file containing an array of grants",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "API key for the embedding service",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Report the number of stored grants",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func matchCommand(c *cli.Context) error {
	ctx := context.Background()

	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("query text is required")
	}

	opts := []ai.ConfigOption{
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	if models := c.StringSlice("rerank-model"); len(models) > 0 {
		opts = append(opts, ai.WithRerankModels(models...))
	}
	if model := c.String("scoring-model"); model != "" {
		opts = append(opts, ai.WithScoringModel(model))
	}
	aiConfig := ai.NewConfig(opts...)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := grantmatch.NewDatabase(c.String("db"), grantmatch.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	matcher, err := db.NewMatcher()
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}
	defer matcher.Release()

	query := core.Query{
		Text:          queryText,
		Organizations: c.StringSlice("org"),
		Category:      core.Category(c.String("category")),
	}
	if err := query.Validate(); err != nil {
		return err
	}

	result, err := matcher.Match(ctx, query)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	fmt.Println(result.Explanation)
	for i, m := range result.Matches {
		grant, err := db.GrantRepository().GetGrant(ctx, m.GrantId)
		title := m.GrantId
		org := ""
		if err == nil {
			title = grant.Title
			org = grant.Organization
		}
		fmt.Printf("%2d. [%.2f] %s (%s)\n", i+1, m.Score, title, org)
		for _, reason := range m.Reasons {
			fmt.Printf("      %s\n", reason)
		}
	}

	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var grants []*core.Grant
	if err := json.Unmarshal(data, &grants); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(grants) == 0 {
		return fmt.Errorf("seed file contains no grants")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewGrantRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	for _, grant := range grants {
		embedding, err := embedder.EmbedText(ctx, embeddingText(grant))
		if err != nil {
			return fmt.Errorf("failed to embed grant %q: %w", grant.Id, err)
		}
		grant.Embedding = rank.Normalize(embedding)
	}

	if err := repo.AddGrants(ctx, grants...); err != nil {
		return fmt.Errorf("failed to store grants: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d grants into %s\n", len(grants), c.String("db"))
	return nil
}

func statsCommand(c *cli.Context) error {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewGrantRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	count, err := repo.Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count grants: %w", err)
	}

	fmt.Printf("Stored grants: %d\n", count)
	return nil
}

// embeddingText assembles the text that represents a grant in vector space.
func embeddingText(g *core.Grant) string {
	parts := []string{g.Title, g.Description}
	if len(g.Keywords) > 0 {
		parts = append(parts, strings.Join(g.Keywords, ", "))
	}
	return strings.Join(parts, "\n")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
