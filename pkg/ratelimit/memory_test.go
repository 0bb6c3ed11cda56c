package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter(requests int, window time.Duration) (*InMemoryRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	limiter := NewInMemoryRateLimiter(requests, window)
	limiter.now = clock.now
	return limiter, clock
}

func TestInMemoryRateLimiter_IsPerKey(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newClockedLimiter(1, time.Second)

	limited, err := limiter.IsLimited(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, limited)

	limited, _ = limiter.IsLimited(ctx, "client-a")
	assert.True(t, limited, "second immediate request for client-a")

	limited, _ = limiter.IsLimited(ctx, "client-b")
	assert.False(t, limited, "client-b has its own bucket")
}

func TestInMemoryRateLimiter_BurstThenRefill(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newClockedLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		limited, _ := limiter.IsLimited(ctx, "198.51.100.7")
		require.False(t, limited, "request %d within burst", i+1)
	}
	limited, _ := limiter.IsLimited(ctx, "198.51.100.7")
	assert.True(t, limited, "31st request in the same instant")

	// One token every two seconds.
	clock.advance(2 * time.Second)
	limited, _ = limiter.IsLimited(ctx, "198.51.100.7")
	assert.False(t, limited)
}

func TestInMemoryRateLimiter_EmptyKeySharesBucket(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newClockedLimiter(1, time.Minute)

	limited, _ := limiter.IsLimited(ctx, "")
	assert.False(t, limited)
	limited, _ = limiter.IsLimited(ctx, "")
	assert.True(t, limited)
}

func TestInMemoryRateLimiter_EvictsIdleBuckets(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newClockedLimiter(5, time.Minute)

	for i := 0; i < sweepEvery-1; i++ {
		_, _ = limiter.IsLimited(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, sweepEvery-1, limiter.size())

	clock.advance(3 * time.Minute)
	_, _ = limiter.IsLimited(ctx, "fresh")

	assert.Equal(t, 1, limiter.size())
}

func TestNewRateLimiter_InMemoryWithoutRedis(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{Requests: 30, Window: time.Minute})

	_, ok := limiter.(*InMemoryRateLimiter)
	assert.True(t, ok, "got %T", limiter)

	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 30, requests)
	assert.Equal(t, time.Minute, window)
	assert.NoError(t, limiter.Close())
}
