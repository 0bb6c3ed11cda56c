package config

import (
	"context"
	"time"

	"github.com/akeren/launchwait/config/router"
	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/internal/models"
	"github.com/akeren/launchwait/pkg/constants"
	"github.com/akeren/launchwait/pkg/factory"
	"github.com/akeren/launchwait/pkg/utils"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Mail            *MailConfig
	Factories       *factory.FactoryContainer
	TracingShutdown func(context.Context) error

	drains []func()
}

type AppConfig struct {
	RateLimitRequests         int
	RateLimitWindow           time.Duration
	RequestTimeout            time.Duration
	WaitlistRateLimitRequests int
	WaitlistCountCacheTTL     time.Duration
}

// NewAppConfig reads the limits and timeouts from the environment. Values
// that are missing, malformed or non-positive keep their defaults.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests:         utils.GetEnvIntOrDefault("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:           utils.GetEnvDurationOrDefault("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow),
		RequestTimeout:            utils.GetEnvDurationOrDefault("REQUEST_TIMEOUT", router.DefaultTimeoutDuration),
		WaitlistRateLimitRequests: utils.GetEnvIntOrDefault("WAITLIST_RATE_LIMIT_REQUESTS", constants.DefaultWaitlistRateLimitRequests),
		WaitlistCountCacheTTL:     utils.GetEnvDurationOrDefault("WAITLIST_COUNT_CACHE_TTL", constants.WaitlistCountCacheTTL),
	}
}

// OnCleanup registers fn to run during Cleanup, after the router stops and
// before the cache and database close. Domains use it to wait for background
// work that still needs those resources.
func (ac *ApplicationConfig) OnCleanup(fn func()) {
	if fn != nil {
		ac.drains = append(ac.drains, fn)
	}
}

// Cleanup releases resources in reverse dependency order: the router's
// limiters first, then registered background work, then the cache and
// database, and finally the tracer, which flushes spans recorded by the others.
func (ac *ApplicationConfig) Cleanup() {
	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}
	for _, drain := range ac.drains {
		drain()
	}
	if ac.Cache != nil {
		_ = CloseCache(ac.Cache, ac.Logger)
	}
	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shut down tracer provider", "error", err)
		}
	}

	ac.Logger.Info("Application cleanup completed")
}

// openStore connects the database and, when asked, creates the schema with
// gorm AutoMigrate. Production schemas go through the CLI migrate command.
func openStore(logger *log.Logger, autoMigrate bool) (*gorm.DB, error) {
	db, err := NewDatabase(logger, &DBConfig{})
	if err != nil {
		return nil, err
	}
	if !autoMigrate {
		return db, nil
	}

	if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
		CloseDatabase(db, logger)
		return nil, err
	}
	return db, nil
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	db, err := openStore(logger, autoMigrate)
	if err != nil {
		if tracingShutdown != nil {
			_ = tracingShutdown(context.Background())
		}
		return nil, err
	}

	settings := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	mail := NewMailConfig()
	if !mail.IsConfigured() {
		logger.Info("SENDGRID_API_KEY not set; waitlist acknowledgment emails disabled")
	}

	ac := &ApplicationConfig{
		DB:              db,
		Logger:          logger,
		Cache:           cache,
		Config:          settings,
		Mail:            mail,
		Factories:       factory.NewFactoryContainer(logger, cache),
		TracingShutdown: tracingShutdown,
		RouterService: router.CreateRouterService(logger, cache, &router.RouterConfig{
			RateLimitRequests: settings.RateLimitRequests,
			RateLimitWindow:   settings.RateLimitWindow,
			RequestTimeout:    settings.RequestTimeout,
		}),
	}

	logger.Info("Application configuration loaded", "cache", cache != nil, "mail", mail.IsConfigured())
	return ac, nil
}
