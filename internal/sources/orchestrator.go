package sources

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nexora/opportunity-agent/internal/types"
)

// Orchestrator defaults, applied when Options leaves them zero.
const (
	DefaultMaxRetries     = 3
	DefaultParallelism    = 4
	DefaultAdapterTimeout = 30 * time.Second
	DefaultDelayMin       = 1 * time.Second
	DefaultDelayMax       = 3 * time.Second
)

// ListingCache caches fetched listings per (source, query) so repeated
// runs inside one scrape window reuse results instead of re-fetching.
type ListingCache interface {
	Get(ctx context.Context, source string, q Query) ([]types.RawListing, bool)
	Set(ctx context.Context, source string, q Query, listings []types.RawListing)
}

// Options configures the orchestrator.
type Options struct {
	Parallelism    int
	MaxRetries     int
	AdapterTimeout time.Duration
	DelayMin       time.Duration
	DelayMax       time.Duration
	Cache          ListingCache
}

// Stats summarizes one FetchAll invocation.
type Stats struct {
	Succeeded int
	Failed    int
	FromCache int
	PerSource map[string]int
	Errors    []error
}

// Orchestrator fans a query out across adapter sets, containing each
// source's failures so one bad source never sinks a run.
type Orchestrator struct {
	sets []AdapterSet
	opts Options
}

// NewOrchestrator creates an orchestrator over the given adapter sets.
func NewOrchestrator(sets []AdapterSet, opts Options) *Orchestrator {
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = DefaultAdapterTimeout
	}
	if opts.DelayMin <= 0 {
		opts.DelayMin = DefaultDelayMin
	}
	if opts.DelayMax < opts.DelayMin {
		opts.DelayMax = opts.DelayMin + (DefaultDelayMax - DefaultDelayMin)
	}
	return &Orchestrator{sets: sets, opts: opts}
}

// FetchAll runs every adapter set concurrently up to the parallelism limit
// and returns the combined raw listings in configured source order. Source
// failures are recorded in Stats, never returned as an error; the only
// error case is cancellation of ctx itself.
func (o *Orchestrator) FetchAll(ctx context.Context, q Query) ([]types.RawListing, *Stats, error) {
	results := make([][]types.RawListing, len(o.sets))
	errs := make([]error, len(o.sets))
	cached := make([]bool, len(o.sets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Parallelism)

	for i, set := range o.sets {
		g.Go(func() error {
			listings, fromCache, err := o.fetchSet(gctx, set, q)
			results[i] = listings
			errs[i] = err
			cached[i] = fromCache
			// Adapter failures stay contained; only ctx cancellation
			// propagates through the group.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{PerSource: make(map[string]int, len(o.sets))}
	var all []types.RawListing
	for i, set := range o.sets {
		name := set.Primary.Name()
		if errs[i] != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, errs[i])
			log.Printf("[sources] %s failed: %v", name, errs[i])
			continue
		}
		stats.Succeeded++
		if cached[i] {
			stats.FromCache++
		}
		stats.PerSource[name] = len(results[i])
		all = append(all, results[i]...)
	}
	return all, stats, nil
}

// fetchSet runs one adapter set: cache check, primary with retries, then
// the secondary variant with retries.
func (o *Orchestrator) fetchSet(ctx context.Context, set AdapterSet, q Query) ([]types.RawListing, bool, error) {
	name := set.Primary.Name()

	if o.opts.Cache != nil {
		if listings, ok := o.opts.Cache.Get(ctx, name, q); ok {
			return listings, true, nil
		}
	}

	listings, err := o.fetchWithRetries(ctx, set.Primary, q)
	if err != nil && set.Secondary != nil {
		log.Printf("[sources] %s primary failed, trying secondary variant: %v", name, err)
		listings, err = o.fetchWithRetries(ctx, set.Secondary, q)
	}
	if err != nil {
		return nil, false, err
	}

	if o.opts.Cache != nil {
		o.opts.Cache.Set(ctx, name, q, listings)
	}
	return listings, false, nil
}

// fetchWithRetries invokes one adapter with a per-attempt timeout and a
// randomized politeness delay before each attempt. The timeout aborts only
// this adapter's attempt; the surrounding run keeps going.
func (o *Orchestrator) fetchWithRetries(ctx context.Context, adapter Adapter, q Query) ([]types.RawListing, error) {
	var lastErr error

	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		if err := o.politeDelay(ctx); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.AdapterTimeout)
		listings, err := adapter.Fetch(attemptCtx, q)
		cancel()

		if err == nil {
			return listings, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var srcErr *SourceUnavailableError
		if errors.As(err, &srcErr) && !srcErr.Retryable && attemptCtx.Err() == nil {
			break // permanent failure, retrying cannot help
		}
	}
	return nil, lastErr
}

// politeDelay sleeps a random duration inside the configured window.
func (o *Orchestrator) politeDelay(ctx context.Context) error {
	window := o.opts.DelayMax - o.opts.DelayMin
	delay := o.opts.DelayMin
	if window > 0 {
		delay += time.Duration(rand.Int63n(int64(window)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
