package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepEvery = 1024

// InMemoryRateLimiter gives every key a token bucket of Requests tokens that
// refills over Window. Only correct for a single instance.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

// IsLimited spends one token for key. Requests without a client address
// share a single bucket.
func (r *InMemoryRateLimiter) IsLimited(_ context.Context, key string) (bool, error) {
	if key == "" {
		key = "__empty__"
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		every := r.window / time.Duration(max(1, r.requests))
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	r.calls++
	if r.calls%sweepEvery == 0 {
		r.evictIdle(now)
	}

	return !b.limiter.AllowN(now, 1), nil
}

// evictIdle drops buckets unused for two windows; by then they are full again.
func (r *InMemoryRateLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-2 * r.window)
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
}

func (r *InMemoryRateLimiter) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}
