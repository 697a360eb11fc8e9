package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("client-a")
		assert.True(t, allowed, "request %d within burst", i)
	}

	allowed, info := l.Allow("client-a")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)
	defer l.Stop()

	allowed, _ := l.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = l.Allow("client-a")
	require.False(t, allowed)

	allowed, _ = l.Allow("client-b")
	assert.True(t, allowed, "second client has its own bucket")
}

func TestTokensRefill(t *testing.T) {
	l := NewLimiter(100, 1) // 100 tokens/sec refill
	defer l.Stop()

	allowed, _ := l.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = l.Allow("client-a")
	require.False(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = l.Allow("client-a")
	assert.True(t, allowed, "bucket refills over time")
}

func TestDropIdleBuckets(t *testing.T) {
	l := NewLimiter(1, 1)
	defer l.Stop()

	l.Allow("client-a")
	require.Len(t, l.buckets, 1)

	l.dropIdleBuckets(time.Now().Add(time.Minute))
	assert.Empty(t, l.buckets)
}
