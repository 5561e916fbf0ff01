package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting
// This abstraction allows swapping between in-memory and distributed (Redis) implementations
type RateLimiter interface {
	// Allow checks if a request from the given key (IP, employee ID, etc.) is allowed
	// Returns true if allowed, false if rate limit exceeded
	Allow(ctx context.Context, key string) bool
}

// InMemoryRateLimiter implements rate limiting using in-memory token buckets.
// Suitable for single-instance deployments.
type InMemoryRateLimiter struct {
	rate  rate.Limit
	burst int

	// limiters stores per-key rate limiters
	limiters sync.Map // map[string]*rate.Limiter

	cleanupInterval time.Duration
	maxAge          time.Duration

	// lastAccess tracks when each limiter was last used
	lastAccess sync.Map // map[string]time.Time

	stopCleanup chan struct{}
}

// NewInMemoryRateLimiter creates a new in-memory rate limiter
// rps: requests per second, burst: maximum burst size
func NewInMemoryRateLimiter(rps float64, burst int) *InMemoryRateLimiter {
	limiter := &InMemoryRateLimiter{
		rate:            rate.Limit(rps),
		burst:           burst,
		cleanupInterval: 5 * time.Minute,
		maxAge:          10 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

// Allow checks if a single request is allowed
func (l *InMemoryRateLimiter) Allow(ctx context.Context, key string) bool {
	limiter := l.getLimiter(key)
	l.lastAccess.Store(key, time.Now().UTC())
	return limiter.Allow()
}

// getLimiter gets or creates a rate limiter for the given key
func (l *InMemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, exists := l.limiters.Load(key); exists {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(l.rate, l.burst)

	// Store it (may race with another goroutine, that's OK)
	actual, loaded := l.limiters.LoadOrStore(key, limiter)
	if loaded {
		return actual.(*rate.Limiter)
	}

	l.lastAccess.Store(key, time.Now().UTC())

	return limiter
}

// cleanup periodically removes old limiters to prevent memory leaks
func (l *InMemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupOldLimiters()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *InMemoryRateLimiter) cleanupOldLimiters() {
	cutoff := time.Now().UTC().Add(-l.maxAge)
	var keysToDelete []string

	l.lastAccess.Range(func(key, value interface{}) bool {
		lastTime := value.(time.Time)
		if lastTime.Before(cutoff) {
			keysToDelete = append(keysToDelete, key.(string))
		}
		return true
	})

	for _, key := range keysToDelete {
		l.limiters.Delete(key)
		l.lastAccess.Delete(key)
	}
}

// Stop stops the cleanup goroutine
func (l *InMemoryRateLimiter) Stop() {
	close(l.stopCleanup)
}
