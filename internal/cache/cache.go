// Package cache provides a redis-backed cache for fetched listings, keyed
// by source and query. It keeps repeated per-user pipeline runs within one
// scrape window from hammering the same boards.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexora/opportunity-agent/internal/sources"
	"github.com/nexora/opportunity-agent/internal/types"
)

// DefaultTTL is how long cached listings stay fresh.
const DefaultTTL = 30 * time.Minute

// Cache implements sources.ListingCache on redis. A nil *Cache is a valid
// no-op cache, so callers can wire it unconditionally.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis. An empty URL returns a nil cache, which disables
// caching without errors.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns cached listings for (source, query) when present and fresh.
// Redis errors are treated as cache misses.
func (c *Cache) Get(ctx context.Context, source string, q sources.Query) ([]types.RawListing, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, key(source, q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] get failed for %s: %v", source, err)
		}
		return nil, false
	}

	var listings []types.RawListing
	if err := json.Unmarshal(data, &listings); err != nil {
		log.Printf("[cache] corrupt entry for %s: %v", source, err)
		return nil, false
	}
	return listings, true
}

// Set stores listings for (source, query). Failures are logged, never
// surfaced: caching is best effort.
func (c *Cache) Set(ctx context.Context, source string, q sources.Query, listings []types.RawListing) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(listings)
	if err != nil {
		log.Printf("[cache] marshal failed for %s: %v", source, err)
		return
	}
	if err := c.client.Set(ctx, key(source, q), data, c.ttl).Err(); err != nil {
		log.Printf("[cache] set failed for %s: %v", source, err)
	}
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func key(source string, q sources.Query) string {
	keywords := strings.Join(strings.Fields(strings.ToLower(q.Keywords)), "-")
	location := strings.Join(strings.Fields(strings.ToLower(q.Location)), "-")
	return fmt.Sprintf("listings:%s:%s:%s:%d", source, keywords, location, q.Limit)
}
