package sources

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/types"
)

type fakeAdapter struct {
	name     string
	typ      types.OpportunityType
	listings []types.RawListing
	err      error
	failures int // fail this many times before succeeding
	block    bool

	mu    sync.Mutex
	calls int
}

func (f *fakeAdapter) Name() string                { return f.name }
func (f *fakeAdapter) Type() types.OpportunityType { return f.typ }

func (f *fakeAdapter) Fetch(ctx context.Context, q Query) ([]types.RawListing, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, &SourceUnavailableError{Source: f.name, Message: "timed out", Retryable: true, Cause: ctx.Err()}
	}
	if f.err != nil {
		return nil, f.err
	}
	if calls <= f.failures {
		return nil, &SourceUnavailableError{Source: f.name, Message: "transient", Retryable: true}
	}
	return f.listings, nil
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastOptions() Options {
	return Options{
		Parallelism:    4,
		MaxRetries:     3,
		AdapterTimeout: 50 * time.Millisecond,
		DelayMin:       time.Millisecond,
		DelayMax:       2 * time.Millisecond,
	}
}

func listing(title, company, source string) types.RawListing {
	return types.RawListing{Title: title, Company: company, Source: source, Type: types.TypeJob}
}

func TestFetchAllCombinesSources(t *testing.T) {
	sets := []AdapterSet{
		{Primary: &fakeAdapter{name: "a", listings: []types.RawListing{listing("Dev", "Acme", "a")}}},
		{Primary: &fakeAdapter{name: "b", listings: []types.RawListing{listing("SRE", "Beta", "b")}}},
	}
	o := NewOrchestrator(sets, fastOptions())

	all, stats, err := o.FetchAll(context.Background(), Query{Keywords: "go", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 0, stats.Failed)
	// Output follows configured source order regardless of completion order
	assert.Equal(t, "a", all[0].Source)
	assert.Equal(t, "b", all[1].Source)
}

func TestFetchAllTimeoutIsolation(t *testing.T) {
	stuck := &fakeAdapter{name: "stuck", block: true}
	healthy := &fakeAdapter{name: "ok", listings: []types.RawListing{listing("Dev", "Acme", "ok")}}
	sets := []AdapterSet{{Primary: stuck}, {Primary: healthy}}

	o := NewOrchestrator(sets, fastOptions())
	all, stats, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)

	assert.Len(t, all, 1)
	assert.Equal(t, "ok", all[0].Source)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Errors, 1)
}

func TestFetchWithRetriesTransientFailure(t *testing.T) {
	flaky := &fakeAdapter{name: "flaky", failures: 2, listings: []types.RawListing{listing("Dev", "Acme", "flaky")}}
	o := NewOrchestrator([]AdapterSet{{Primary: flaky}}, fastOptions())

	all, stats, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 3, flaky.callCount())
}

func TestFetchWithRetriesPermanentFailureStopsEarly(t *testing.T) {
	dead := &fakeAdapter{name: "dead", err: &SourceUnavailableError{Source: "dead", Message: "gone", Retryable: false}}
	o := NewOrchestrator([]AdapterSet{{Primary: dead}}, fastOptions())

	all, stats, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, dead.callCount())
}

func TestFetchSetFallsBackToSecondary(t *testing.T) {
	primary := &fakeAdapter{name: "gh", err: &SourceUnavailableError{Source: "gh", Message: "down", Retryable: false}}
	secondary := &fakeAdapter{name: "gh", listings: []types.RawListing{listing("Dev", "Acme", "gh")}}
	o := NewOrchestrator([]AdapterSet{{Primary: primary, Secondary: secondary}}, fastOptions())

	all, stats, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, secondary.callCount())
}

type memoryCache struct {
	mu    sync.Mutex
	store map[string][]types.RawListing
}

func (c *memoryCache) Get(_ context.Context, source string, _ Query) ([]types.RawListing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	listings, ok := c.store[source]
	return listings, ok
}

func (c *memoryCache) Set(_ context.Context, source string, _ Query, listings []types.RawListing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string][]types.RawListing)
	}
	c.store[source] = listings
}

func TestFetchSetUsesCache(t *testing.T) {
	adapter := &fakeAdapter{name: "a", listings: []types.RawListing{listing("Dev", "Acme", "a")}}
	opts := fastOptions()
	opts.Cache = &memoryCache{}
	o := NewOrchestrator([]AdapterSet{{Primary: adapter}}, opts)

	_, _, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.callCount())

	_, stats, err := o.FetchAll(context.Background(), Query{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.callCount(), "second run should hit the cache")
	assert.Equal(t, 1, stats.FromCache)
}

func TestFetchAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator([]AdapterSet{{Primary: &fakeAdapter{name: "a"}}}, fastOptions())
	_, _, err := o.FetchAll(ctx, Query{Limit: 10})
	assert.Error(t, err)
}
