package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/akeren/launchwait/internal/log"
	apperrors "github.com/akeren/launchwait/pkg/errors"
	"github.com/akeren/launchwait/pkg/ratelimit"
	"github.com/akeren/launchwait/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	DefaultTimeoutDuration = 30 * time.Second
	DefaultPort            = "8080"

	// Registration payloads are a handful of short strings.
	DefaultMaxBodyBytes = 64 << 10
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RouterService struct {
	engine          *gin.Engine
	server          *http.Server
	logger          *log.Logger
	config          RouterConfig
	rateLimiter     ratelimit.RateLimiter
	redisClient     *redis.Client
	metricsRegistry *prometheus.Registry
	hsts            string

	routes map[routeKey]routeBinding
}

// RouterConfig zero values are filled from the environment, see applyDefaults.
type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	Port           string   // APP_PORT
	AllowedOrigins []string // CORS_ALLOWED_ORIGIN, comma-separated; "*" allows any
	TrustedProxies []string // TRUSTED_PROXIES; "*" trusts every hop
	MaxBodyBytes   int64    // MAX_REQUEST_BODY_BYTES
}

func (cfg *RouterConfig) applyDefaults() {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultTimeoutDuration
	}
	if cfg.Port == "" {
		cfg.Port = utils.GetEnvTrimmedOrDefault("APP_PORT", DefaultPort)
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = utils.GetEnvList("CORS_ALLOWED_ORIGIN")
	}
	if cfg.TrustedProxies == nil {
		cfg.TrustedProxies = utils.GetEnvList("TRUSTED_PROXIES")
	}
	if len(cfg.TrustedProxies) == 1 && cfg.TrustedProxies[0] == "*" {
		cfg.TrustedProxies = []string{"0.0.0.0/0", "::/0"}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = int64(utils.GetEnvIntOrDefault("MAX_REQUEST_BODY_BYTES", DefaultMaxBodyBytes))
	}
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode, ok := os.LookupEnv("GIN_MODE"); ok && mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	cfg := RouterConfig{}
	if routerConfig != nil {
		cfg = *routerConfig
	}
	cfg.applyDefaults()

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		ginRouter.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	// Gin trusts every proxy by default, which lets clients pick their own
	// rate limit key through X-Forwarded-For.
	if err := ginRouter.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = ginRouter.SetTrustedProxies(nil)
	} else if cfg.TrustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	var redisClient *redis.Client
	if provider, ok := cache.(RedisClientProvider); ok {
		redisClient = provider.GetClient()
	}

	rs := &RouterService{
		engine:      ginRouter,
		logger:      logger,
		config:      cfg,
		redisClient: redisClient,
		hsts:        hstsHeaderFromEnv(),
		routes:      make(map[routeKey]routeBinding),
	}

	rs.initRateLimiting()

	// Correlation first so every later log line carries the ID.
	ginRouter.Use(rs.correlationIDMiddleware())
	ginRouter.Use(rs.loggerInjectionMiddleware())
	ginRouter.Use(rs.requestLoggingMiddleware())

	rs.mountMetrics()

	ginRouter.Use(rs.securityHeadersMiddleware())
	ginRouter.Use(rs.maxBodySizeMiddleware())
	ginRouter.Use(rs.corsMiddleware())
	ginRouter.Use(rs.rateLimitMiddleware())
	ginRouter.Use(rs.timeoutMiddleware())

	ginRouter.HandleMethodNotAllowed = true
	ginRouter.RedirectTrailingSlash = true

	ginRouter.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResult(apperrors.StatusNotFound, "Route not found", nil).ToJSON())
	})
	ginRouter.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResult(apperrors.StatusMethodNotAllowed, "Method not allowed", nil).ToJSON())
	})

	rs.server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: ginRouter,

		// Gin's Context is not goroutine-safe, so deadlines are enforced here
		// rather than by running handlers in another goroutine.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized", "addr", rs.server.Addr, "cors_origins", len(cfg.AllowedOrigins))
	return rs
}

func (routerService *RouterService) initRateLimiting() {
	requests := routerService.config.RateLimitRequests
	window := routerService.config.RateLimitWindow

	redisClient := routerService.redisClient
	if redisClient != nil {
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			routerService.logger.Warn("Failed to connect to Redis for rate limiting, falling back to in-memory", "error", err)
			redisClient = nil
		}
	}

	if requests <= 0 || window <= 0 {
		routerService.logger.Warn("Default rate limit disabled", "requests", requests, "window", window)
		return
	}

	routerService.rateLimiter = ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: requests,
		Window:   window,
		Redis:    redisClient,
		Logger:   routerService.logger,
	})

	routerService.logger.Info("Default rate limit initialized",
		"requests", requests,
		"window", window,
		"distributed", redisClient != nil,
	)
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) Cleanup() {
	if routerService.rateLimiter != nil {
		if err := routerService.rateLimiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

// hstsHeaderFromEnv returns "" when HSTS is off. It defaults to on only for
// production APP_ENV values.
func hstsHeaderFromEnv() string {
	appEnv := utils.GetEnvTrimmed("APP_ENV")
	if !utils.GetEnvBoolOrDefault("HSTS_ENABLED", appEnv == "production" || appEnv == "prod") {
		return ""
	}

	value := "max-age=" + strconv.Itoa(utils.GetEnvIntOrDefault("HSTS_MAX_AGE", 31536000))
	if utils.GetEnvBoolOrDefault("HSTS_INCLUDE_SUBDOMAINS", true) {
		value += "; includeSubDomains"
	}
	return value
}
