package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nexora/opportunity-agent/internal/cache"
	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/db"
	"github.com/nexora/opportunity-agent/internal/email"
	"github.com/nexora/opportunity-agent/internal/embedding"
	"github.com/nexora/opportunity-agent/internal/matching"
	"github.com/nexora/opportunity-agent/internal/pipeline"
	"github.com/nexora/opportunity-agent/internal/sources"
)

// components holds the wired collaborators shared by the serve and run
// commands.
type components struct {
	cfg      *config.Config
	db       *db.DB
	pipeline *pipeline.Pipeline

	closers []func()
}

// buildComponents loads configuration and connects the database, cache,
// source adapters, matching engine and pipeline. Optional pieces that
// fail (cache, embeddings, email) are logged and skipped rather than
// aborting startup.
func buildComponents(ctx context.Context) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	c := &components{cfg: cfg}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, database.Close)
	if err := database.EnsureSchema(ctx); err != nil {
		c.close()
		return nil, err
	}
	c.db = database

	orch, err := buildOrchestrator(ctx, cfg, c)
	if err != nil {
		c.close()
		return nil, err
	}

	var embedder embedding.Embedder
	if cfg.Matching.GeminiAPIKey == "" {
		log.Println("[wire] GEMINI_API_KEY not set, matching runs in degraded keyword mode")
	} else {
		gemini, err := embedding.NewGeminiEmbedder(ctx, cfg.Matching.GeminiAPIKey, cfg.Matching.EmbeddingModel)
		if err != nil {
			log.Printf("[wire] embedding client unavailable, degrading to keyword mode: %v", err)
		} else {
			embedder = gemini
			c.closers = append(c.closers, func() { _ = gemini.Close() })
		}
	}

	engine := matching.New(embedder,
		matching.Weights{
			Semantic:      cfg.Matching.SemanticWeight,
			Skill:         cfg.Matching.SkillWeight,
			Interest:      cfg.Matching.InterestWeight,
			LocationBonus: cfg.Matching.LocationBonus,
		},
		matching.Thresholds{
			Best:  cfg.Matching.BestThreshold,
			Floor: cfg.Matching.FloorThreshold,
		})

	opts := pipeline.Options{LimitPerSource: cfg.Sources.LimitPerSource}
	if cfg.Email.Enabled() {
		mailer, err := email.NewVendorMailer(cfg.Email.Endpoint, cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("[wire] email disabled: %v", err)
		} else {
			opts.Mailer = mailer
		}
	}

	c.pipeline = pipeline.New(database, orch, engine, opts)
	return c, nil
}

// buildOrchestrator assembles the source adapters and their fan-out
// orchestrator, with a redis listing cache when REDIS_URL is set.
func buildOrchestrator(ctx context.Context, cfg *config.Config, c *components) (*sources.Orchestrator, error) {
	sets, err := sources.Build(cfg.Sources.Settings())
	if err != nil {
		return nil, fmt.Errorf("failed to build source adapters: %w", err)
	}

	opts := sources.Options{
		Parallelism:    cfg.Sources.Parallelism,
		MaxRetries:     cfg.Sources.MaxRetries,
		AdapterTimeout: cfg.Sources.AdapterTimeout,
		DelayMin:       cfg.Sources.DelayMin,
		DelayMax:       cfg.Sources.DelayMax,
	}

	listingCache, err := cache.New(ctx, cfg.Redis.URL, cfg.Redis.TTL)
	if err != nil {
		log.Printf("[wire] redis unavailable, continuing without listing cache: %v", err)
	} else if listingCache != nil {
		opts.Cache = listingCache
		c.closers = append(c.closers, func() { _ = listingCache.Close() })
	}

	return sources.NewOrchestrator(sets, opts), nil
}

// close releases resources in reverse acquisition order.
func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
