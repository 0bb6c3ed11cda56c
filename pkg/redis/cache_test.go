package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache_RequiresHost(t *testing.T) {
	_, err := NewRedisCache(&Config{Port: "6379"})
	require.Error(t, err)

	_, err = NewRedisCache(nil)
	require.Error(t, err)
}

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Host: "cache.internal", Port: "6380"}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}

func TestRedisCache_UnreachableServerSurfacesErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewRedisCacheFromClient(client)
	defer cache.Close()

	ctx := context.Background()
	assert.Error(t, cache.Ping(ctx))
	_, err := cache.Get(ctx, "waitlist:count")
	assert.Error(t, err)
	assert.Same(t, client, cache.GetClient())
}
