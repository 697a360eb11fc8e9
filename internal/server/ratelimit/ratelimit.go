// Package ratelimit provides per-client rate limiting using a token
// bucket algorithm.
package ratelimit

import (
	"sync"
	"time"
)

// bucket holds the token state for one client. Tokens refill at a steady
// rate up to the burst capacity.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

// Info describes the limiter's verdict for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter rate-limits requests per client identifier.
type Limiter struct {
	rate  float64 // tokens per second
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a limiter allowing rate requests per second with the
// given burst capacity per client, and starts a background sweep that
// drops buckets idle for over an hour.
func NewLimiter(rate float64, burst int) *Limiter {
	l := &Limiter{
		rate:          rate,
		burst:         burst,
		buckets:       make(map[string]*bucket),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		cleanupStop:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from clientID may proceed, consuming
// one token when it does.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	b := l.getBucket(clientID)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(float64(l.burst), b.tokens+elapsed*l.rate)
	b.lastRefill = now
	b.lastAccess = now

	info := Info{Limit: l.burst}
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		info.Allowed = true
		info.Remaining = int(b.tokens)
		return true, info
	}

	info.Remaining = 0
	info.RetryAfter = time.Duration((1.0 - b.tokens) / l.rate * float64(time.Second))
	return false, info
}

func (l *Limiter) getBucket(clientID string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientID]
	if !ok {
		now := time.Now()
		b = &bucket{tokens: float64(l.burst), lastRefill: now, lastAccess: now}
		l.buckets[clientID] = b
	}
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.dropIdleBuckets(time.Now().Add(-1 * time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) dropIdleBuckets(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastAccess.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, id)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.cleanupTicker.Stop()
	close(l.cleanupStop)
}
