package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexora/opportunity-agent/internal/cache"
	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/dedupe"
	"github.com/nexora/opportunity-agent/internal/observability"
	"github.com/nexora/opportunity-agent/internal/sources"
)

var (
	fetchKeywords string
	fetchLocation string
	fetchLimit    int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and dedupe listings without persisting",
	Long:  `Fetch listings from the enabled sources for an ad-hoc query, deduplicate them and print the results. Useful for inspecting adapter output without a database.`,
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchKeywords, "keywords", "", "Search keywords (required)")
	fetchCmd.Flags().StringVar(&fetchLocation, "location", "", "Location filter, empty means remote/any")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Listings per source (overrides LIMIT_PER_SOURCE)")
	_ = fetchCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	srcCfg, err := config.NewSourcesConfig()
	if err != nil {
		return err
	}

	sets, err := sources.Build(srcCfg.Settings())
	if err != nil {
		return fmt.Errorf("failed to build source adapters: %w", err)
	}

	opts := sources.Options{
		Parallelism:    srcCfg.Parallelism,
		MaxRetries:     srcCfg.MaxRetries,
		AdapterTimeout: srcCfg.AdapterTimeout,
		DelayMin:       srcCfg.DelayMin,
		DelayMax:       srcCfg.DelayMax,
	}

	redisCfg := config.NewRedisConfig()
	listingCache, err := cache.New(ctx, redisCfg.URL, redisCfg.TTL)
	if err == nil && listingCache != nil {
		opts.Cache = listingCache
		defer func() { _ = listingCache.Close() }()
	}

	orch := sources.NewOrchestrator(sets, opts)

	limit := srcCfg.LimitPerSource
	if fetchLimit > 0 {
		limit = fetchLimit
	}

	listings, stats, err := orch.FetchAll(ctx, sources.Query{
		Keywords: fetchKeywords,
		Location: fetchLocation,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintFetchStats(stats)

	opps := dedupe.Normalize(listings, dedupe.FieldCountScorer)
	printer.PrintOpportunities(opps)

	fmt.Printf("\n%d listings fetched, %d after dedupe\n", len(listings), len(opps))
	return nil
}
