package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/grantmatch/ai"
	"github.com/poiesic/grantmatch/ai/openai"
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/rank"
	"github.com/poiesic/grantmatch/storage/badger"
)

// sampleGrants is a small demo dataset modeled on Swedish public funding
// calls. Deadlines are set relative to seeding time so the dataset stays
// open no matter when it is loaded.
func sampleGrants() []*core.Grant {
	now := time.Now().UTC()
	return []*core.Grant{
		{
			Id:           "vinnova-ai-2026",
			Title:        "AI i industrin",
			Description:  "Funding for applied artificial intelligence projects in Swedish manufacturing industry, including machine learning for process optimization and quality control.",
			Organization: "Vinnova",
			Eligibility:  "Swedish companies and research institutes in consortium.",
			Keywords:     []string{"artificial intelligence", "machine learning", "industry", "automation"},
			Sectors:      []string{"manufacturing", "technology"},
			EligibleOrgs: []string{"private companies", "research institutes"},
			FundingMin:   500_000,
			FundingMax:   5_000_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -1, 0),
			ClosesAt:     now.AddDate(0, 5, 0),
		},
		{
			Id:           "vinnova-digital-health-2026",
			Title:        "Digital hälsa och vård",
			Description:  "Support for digital health innovation: remote patient monitoring, AI-assisted diagnostics, and data-driven care pathways.",
			Organization: "Vinnova",
			Eligibility:  "Healthcare providers, companies, and universities.",
			Keywords:     []string{"digital health", "ehealth", "diagnostics", "ai"},
			Sectors:      []string{"healthcare", "technology"},
			EligibleOrgs: []string{"public healthcare", "private companies", "universities"},
			FundingMin:   300_000,
			FundingMax:   3_000_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -2, 0),
			ClosesAt:     now.AddDate(0, 4, 0),
		},
		{
			Id:           "energi-sol-2026",
			Title:        "Solel och energilagring",
			Description:  "Grants for research and demonstration projects in solar energy and battery storage, from cell technology to grid integration.",
			Organization: "Energimyndigheten",
			Eligibility:  "Companies, universities, and research institutes.",
			Keywords:     []string{"solar energy", "energy storage", "batteries", "renewable"},
			Sectors:      []string{"energy"},
			EligibleOrgs: []string{"private companies", "universities", "research institutes"},
			FundingMin:   1_000_000,
			FundingMax:   10_000_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -1, 0),
			ClosesAt:     now.AddDate(0, 6, 0),
		},
		{
			Id:           "formas-klimat-2026",
			Title:        "Klimatanpassning i samhällsbyggnad",
			Description:  "Research funding for climate adaptation in urban planning: stormwater management, heat resilience, and sustainable construction materials.",
			Organization: "Formas",
			Eligibility:  "Universities and public research organizations.",
			Keywords:     []string{"climate", "urban planning", "sustainability", "construction"},
			Sectors:      []string{"construction", "environment"},
			EligibleOrgs: []string{"universities", "public research organizations"},
			FundingMin:   500_000,
			FundingMax:   4_000_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -3, 0),
			ClosesAt:     now.AddDate(0, 3, 0),
		},
		{
			Id:           "tillvaxt-sme-2026",
			Title:        "Digitaliseringscheckar för småföretag",
			Description:  "Vouchers for small businesses to buy external expertise for digitalization: e-commerce, business systems, and data security.",
			Organization: "Tillväxtverket",
			Eligibility:  "Small and medium-sized enterprises with 2-49 employees.",
			Keywords:     []string{"digitalization", "sme", "e-commerce", "small business"},
			Sectors:      []string{"services", "retail"},
			EligibleOrgs: []string{"private companies"},
			FundingMin:   50_000,
			FundingMax:   250_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -1, 0),
			ClosesAt:     now.AddDate(0, 2, 0),
		},
		{
			Id:           "eu-horizon-green-2026",
			Title:        "Horizon Europe: Green Transition",
			Description:  "European funding for large-scale green transition projects: hydrogen infrastructure, circular economy, and industrial decarbonization.",
			Organization: "European Commission",
			Eligibility:  "Consortia of at least three organizations from different member states.",
			Keywords:     []string{"green transition", "hydrogen", "circular economy", "decarbonization"},
			Sectors:      []string{"energy", "environment", "industry"},
			EligibleOrgs: []string{"private companies", "universities", "public bodies"},
			FundingMin:   2_000_000,
			FundingMax:   50_000_000,
			Currency:     "EUR",
			OpensAt:      now.AddDate(0, -2, 0),
			ClosesAt:     now.AddDate(0, 8, 0),
		},
		{
			Id:           "vr-grundforskning-2026",
			Title:        "Projektbidrag naturvetenskap och teknikvetenskap",
			Description:  "Free-standing research grants in natural sciences and engineering, awarded on scientific quality.",
			Organization: "Vetenskapsrådet",
			Eligibility:  "Individual researchers with a doctoral degree at a Swedish university.",
			Keywords:     []string{"basic research", "natural sciences", "engineering"},
			Sectors:      []string{"research"},
			EligibleOrgs: []string{"universities", "public research organizations"},
			FundingMin:   400_000,
			FundingMax:   1_800_000,
			Currency:     "SEK",
			OpensAt:      now.AddDate(0, -1, 0),
			ClosesAt:     now.AddDate(0, 1, 0),
		},
	}
}

var (
	dbPath         = flag.String("db", "./grants_db", "path to BadgerDB database directory")
	host           = flag.String("host", "http://localhost:11434/v1", "embedding service host URL")
	embeddingModel = flag.String("embedding-model", "text-embedding-3-small", "embedding model name")
	srcFileName    = flag.String("src", "", "JSON file of seed grants (defaults to built-in sample data)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// grantsFromFile reads a JSON array of grants from a file.
func grantsFromFile(filename string) ([]*core.Grant, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var grants []*core.Grant
	if err := json.Unmarshal(data, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// embeddingText assembles the text that represents a grant in vector space.
func embeddingText(g *core.Grant) string {
	parts := []string{g.Title, g.Description}
	if len(g.Keywords) > 0 {
		parts = append(parts, strings.Join(g.Keywords, ", "))
	}
	return strings.Join(parts, "\n")
}

func main() {
	ctx := context.Background()

	// Determine source of seed data
	var grants []*core.Grant
	if srcFileName != nil && *srcFileName != "" {
		var err error
		grants, err = grantsFromFile(*srcFileName)
		if err != nil {
			panic(err)
		}
	} else {
		grants = sampleGrants()
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(*host),
		ai.WithEmbeddingModel(*embeddingModel),
	)
	if err := aiConfig.Validate(); err != nil {
		panic(err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		panic(err)
	}

	backend, err := badger.OpenBackend(*dbPath, false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	repo, err := badger.NewGrantRepository(backend)
	if err != nil {
		panic(err)
	}
	defer repo.Close()

	for _, grant := range grants {
		embedding, err := embedder.EmbedText(ctx, embeddingText(grant))
		if err != nil {
			panic(err)
		}
		grant.Embedding = rank.Normalize(embedding)
	}

	if err := repo.AddGrants(ctx, grants...); err != nil {
		panic(err)
	}

	slog.Info("seeding complete", "grants", len(grants), "db", *dbPath)
}
