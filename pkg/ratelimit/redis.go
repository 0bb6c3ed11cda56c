package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisRateLimiter keeps a sliding window log per key in a sorted set, so
// every instance behind the load balancer shares one quota.
type RedisRateLimiter struct {
	client    *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
	now       func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, keyPrefix string, logger Logger) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisRateLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: keyPrefix,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) redisKey(key string) string {
	if strings.HasPrefix(key, r.keyPrefix) {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	fullKey := r.redisKey(key)

	result, err := slidingWindowScript.Run(ctx, r.client, []string{fullKey},
		r.now().UnixMilli(),
		r.window.Milliseconds(),
		r.requests,
		uuid.NewString(),
	).Result()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script execution failed", "key", fullKey, "error", err)
		}
		return false, fmt.Errorf("rate limiter Redis error: %w", err)
	}

	limited, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("rate limiter Redis error: unexpected script result %T", result)
	}
	return limited == 1, nil
}

// Scores are milliseconds. Rejected requests are not logged, so a client
// hammering the endpoint regains access one window after its last admit.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 0
`)

// Close is a no-op; the client belongs to the application cache.
func (r *RedisRateLimiter) Close() error {
	return nil
}
