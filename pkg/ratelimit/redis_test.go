package ratelimit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRateLimiter_RedisWithPrefix(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{
		Requests:  30,
		Window:    time.Minute,
		Redis:     unreachableClient(t),
		KeyPrefix: "ratelimit:waitlist:",
	})

	rl, ok := limiter.(*RedisRateLimiter)
	require.True(t, ok, "got %T", limiter)
	assert.Equal(t, "ratelimit:waitlist:203.0.113.1", rl.redisKey("203.0.113.1"))
	assert.Equal(t, "ratelimit:waitlist:x", rl.redisKey("ratelimit:waitlist:x"))
}

func TestRedisRateLimiter_DefaultsKeyPrefix(t *testing.T) {
	rl := NewRedisRateLimiter(nil, 1, time.Second, "", nil)
	assert.Equal(t, DefaultKeyPrefix, rl.keyPrefix)
}

func TestRedisRateLimiter_SurfacesBackendErrors(t *testing.T) {
	logger := &recordingLogger{}
	rl := NewRedisRateLimiter(unreachableClient(t), 5, time.Minute, "", logger)

	limited, err := rl.IsLimited(context.Background(), "203.0.113.1")

	require.Error(t, err)
	assert.False(t, limited)
	assert.Equal(t, []string{"Redis rate limit script execution failed"}, logger.messages)
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestRedisRateLimiter_SlidingWindow(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	prefix := fmt.Sprintf("ratelimit:test:%d:", time.Now().UnixNano())
	rl := NewRedisRateLimiter(client, 2, time.Minute, prefix, nil)
	start := time.Now()
	rl.now = func() time.Time { return start }

	for i := 0; i < 2; i++ {
		limited, err := rl.IsLimited(ctx, "client")
		require.NoError(t, err)
		assert.False(t, limited)
	}
	limited, err := rl.IsLimited(ctx, "client")
	require.NoError(t, err)
	assert.True(t, limited)

	rl.now = func() time.Time { return start.Add(time.Minute + time.Millisecond) }
	limited, err = rl.IsLimited(ctx, "client")
	require.NoError(t, err)
	assert.False(t, limited)
}
