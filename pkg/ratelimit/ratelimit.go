// Package ratelimit holds the per-client limiters used by the router. Keys are
// client IPs; each limiter admits Requests per Window.
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Logger interface {
	Error(msg string, args ...interface{})
}

type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(ctx context.Context, key string) (bool, error)
	Close() error
}

// DefaultKeyPrefix namespaces the router-wide limiter in Redis.
const DefaultKeyPrefix = "ratelimit:"

type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	Redis     *redis.Client // nil selects the in-memory limiter
	KeyPrefix string        // Redis only; limiters sharing a client need distinct prefixes
	Logger    Logger
}

func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.KeyPrefix, config.Logger)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}
