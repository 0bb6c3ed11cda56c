package waitlist

//go:generate mockgen -source=cache.go -destination=mock_cache.go -package=waitlist

import (
	"context"
	"strconv"
	"time"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/constants"
)

// KeyValueCache is the subset of the application cache the count cache needs.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CountCache memoizes the public waitlist size. Failures are logged and
// treated as misses; the database stays the source of truth.
type CountCache interface {
	Get(ctx context.Context) (int64, bool)
	Set(ctx context.Context, count int64)
	Invalidate(ctx context.Context)
}

type redisCountCache struct {
	cache  KeyValueCache
	ttl    time.Duration
	logger *log.Logger
}

// NewCountCache returns a cache over kv, or a no-op cache when kv is nil.
func NewCountCache(kv KeyValueCache, ttl time.Duration, logger *log.Logger) CountCache {
	if kv == nil {
		return noopCountCache{}
	}
	if ttl <= 0 {
		ttl = constants.WaitlistCountCacheTTL
	}

	return &redisCountCache{cache: kv, ttl: ttl, logger: logger}
}

func (c *redisCountCache) Get(ctx context.Context) (int64, bool) {
	raw, err := c.cache.Get(ctx, constants.WaitlistCountCacheKey)
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, c.logger).Warn("Waitlist count cache read failed", "error", err)
		return 0, false
	}
	if raw == "" {
		return 0, false
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || count < 0 {
		return 0, false
	}

	return count, true
}

func (c *redisCountCache) Set(ctx context.Context, count int64) {
	if err := c.cache.Set(ctx, constants.WaitlistCountCacheKey, strconv.FormatInt(count, 10), c.ttl); err != nil {
		log.GetLoggerInstanceFromContext(ctx, c.logger).Warn("Waitlist count cache write failed", "error", err)
	}
}

func (c *redisCountCache) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, constants.WaitlistCountCacheKey); err != nil {
		log.GetLoggerInstanceFromContext(ctx, c.logger).Warn("Waitlist count cache invalidation failed", "error", err)
	}
}

type noopCountCache struct{}

func (noopCountCache) Get(context.Context) (int64, bool) { return 0, false }
func (noopCountCache) Set(context.Context, int64)        {}
func (noopCountCache) Invalidate(context.Context)        {}
