package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/akeren/launchwait/config/router"
	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/factory"
	"github.com/akeren/launchwait/pkg/ratelimit"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10
	healthCheckTimeout          = 2 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

// HealthStatus reports 1 for healthy and 0 for unhealthy or not configured.
type HealthStatus struct {
	Database int `json:"database"`
	Cache    int `json:"cache"`
	Mail     int `json:"mail"`   // acknowledgment email configured
	Uptime   int `json:"uptime"` // seconds
}

// probe returns nil when the dependency answers.
type probe func(ctx context.Context) error

type MonitoringController struct {
	logger         *log.Logger
	database       probe
	cache          probe
	mailConfigured bool
	startTime      time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache, limiters factory.RateLimiterFactory, mailConfigured bool) *router.RESTController {
	ctrl := &MonitoringController{
		logger:         logger,
		database:       databaseProbe(db),
		mailConfigured: mailConfigured,
		startTime:      time.Now(),
	}
	if cache != nil {
		ctrl.cache = cache.Ping
	}

	return router.NewRESTController("MonitoringController", "/", func(rs *router.RouterService, c *router.RESTController) {
		limiter := monitoringLimiter(limiters)

		rs.AddGetHandler(c, limiter, "", func(ctx *router.RequestContext) *router.ServiceResult {
			return router.OKResult("Waitlist service is operational.", "Monitoring successful")
		})
		rs.AddGetHandler(c, limiter, "health", func(ctx *router.RequestContext) *router.ServiceResult {
			return router.OKResult(ctrl.health(ctx.Request.Context(), rs.GetLogger(ctx)), "launchwait health check completed")
		})
	})
}

func monitoringLimiter(limiters factory.RateLimiterFactory) ratelimit.RateLimiter {
	if limiters != nil {
		return limiters.CreateRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)
	}
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: monitoringRequestsPerMinute,
		Window:   time.Minute,
	})
}

func databaseProbe(db *gorm.DB) probe {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// health pings the database and cache concurrently under one deadline.
func (ctrl *MonitoringController) health(ctx context.Context, logger *log.Logger) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status := HealthStatus{Uptime: int(time.Since(ctrl.startTime).Seconds())}
	if ctrl.mailConfigured {
		status.Mail = 1
	}

	var wg sync.WaitGroup
	run := func(name string, p probe, into *int) {
		if p == nil {
			logger.Info("Health check skipped", "dependency", name)
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p(ctx); err != nil {
				logger.Error("Health check failed", "dependency", name, "error", err)
				return
			}
			*into = 1
		}()
	}
	run("database", ctrl.database, &status.Database)
	run("cache", ctrl.cache, &status.Cache)
	wg.Wait()

	return status
}
