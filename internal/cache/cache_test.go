package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexora/opportunity-agent/internal/sources"
)

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache

	listings, ok := c.Get(context.Background(), "indeed", sources.Query{Keywords: "go"})
	assert.False(t, ok)
	assert.Nil(t, listings)

	// Set and Close on a nil cache must not panic
	c.Set(context.Background(), "indeed", sources.Query{}, nil)
	assert.NoError(t, c.Close())
}

func TestNewWithEmptyURLDisablesCaching(t *testing.T) {
	c, err := New(context.Background(), "", 0)
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewWithInvalidURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-redis-url", 0)
	assert.Error(t, err)
}

func TestKeyNormalization(t *testing.T) {
	a := key("indeed", sources.Query{Keywords: "Software  Engineer", Location: "New York", Limit: 20})
	b := key("indeed", sources.Query{Keywords: "software engineer", Location: "new york", Limit: 20})
	assert.Equal(t, a, b)

	c := key("indeed", sources.Query{Keywords: "software engineer", Location: "new york", Limit: 10})
	assert.NotEqual(t, a, c)
}
