package factory

import (
	"context"
	"time"

	"github.com/akeren/launchwait/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

// RateLimiterFactory builds limiters that share the application's Redis
// client when one is configured. Each named limiter gets its own key space.
type RateLimiterFactory interface {
	CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter
}

type DefaultRateLimiterFactory struct {
	redisClient *redis.Client
	logger      ratelimit.Logger
}

func NewDefaultRateLimiterFactory(cache Cache, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		redisClient: redisClient,
		logger:      logger,
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests:  requests,
		Window:    window,
		Redis:     f.redisClient,
		KeyPrefix: ratelimit.DefaultKeyPrefix + name + ":",
		Logger:    f.logger,
	})
}

// IsDistributed reports whether created limiters are backed by Redis.
func (f *DefaultRateLimiterFactory) IsDistributed() bool {
	return f.redisClient != nil
}

type FactoryContainer struct {
	RateLimiterFactory RateLimiterFactory
}

func NewFactoryContainer(logger ratelimit.Logger, cache Cache) *FactoryContainer {
	return &FactoryContainer{
		RateLimiterFactory: NewDefaultRateLimiterFactory(cache, logger),
	}
}
