package config

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akeren/launchwait/internal/log"
	pkgredis "github.com/akeren/launchwait/pkg/redis"
	"github.com/akeren/launchwait/pkg/utils"
)

// Cache backs the waitlist count cache and, through the Redis client it
// wraps, the distributed rate limiter.
type Cache interface {
	// Get returns ("", nil) for a missing key.
	Get(ctx context.Context, key string) (string, error)
	// Set with ttl=0 never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrCacheNotConfigured = errors.New("cache host is not configured")

// CacheConfig is read from REDIS_HOST, REDIS_PORT, REDIS_PASSWORD and REDIS_DB.
// An empty host means the service runs without Redis.
type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:     utils.GetEnvTrimmed("REDIS_HOST"),
		Port:     utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       utils.GetEnvIntOrDefault("REDIS_DB", 0),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

func (cc *CacheConfig) redisConfig() *pkgredis.Config {
	return &pkgredis.Config{Host: cc.Host, Port: cc.Port, Password: cc.Password, DB: cc.DB}
}

func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		logger.Error("Redis cache requested but REDIS_HOST is empty")
		return nil, ErrCacheNotConfigured
	}

	rc := cc.redisConfig()
	cache, err := pkgredis.NewRedisCache(rc)
	if err != nil {
		logger.Error("Redis cache unavailable", "addr", rc.Addr(), "error", err)
		return nil, err
	}

	logger.Info("Redis cache connected", "addr", rc.Addr(), "db", rc.DB)
	return cache, nil
}

// NewCacheOrNil degrades to no cache: the rate limiter stays in memory and
// the waitlist count is read from the database every time.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("REDIS_HOST not set; running without Redis")
		return nil
	}

	cache, err := cc.NewCache(logger)
	if err != nil {
		logger.Warn("Continuing without Redis", "error", err)
		return nil
	}
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close Redis cache", "error", err)
		return err
	}

	logger.Info("Redis cache closed")
	return nil
}
