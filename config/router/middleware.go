package router

import (
	"context"
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/launchwait/internal/log"
	apperrors "github.com/akeren/launchwait/pkg/errors"
	"github.com/gin-gonic/gin"
)

const correlationHeader = "X-Correlation-ID"

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationHeader)
		if id == "" || len(id) > 128 {
			id = log.GenerateCorrelationID()
		}
		ctx := context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		ctx := context.WithValue(c.Request.Context(), log.LoggerKeyForContext, correlatedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}

		logger := GetLogger(c)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", args...)
		default:
			logger.Info("HTTP request", args...)
		}
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if routerService.hsts != "" && isHTTPS(c) {
			h.Set("Strict-Transport-Security", routerService.hsts)
		}
		c.Next()
	}
}

// isHTTPS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := routerService.config.MaxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// corsMiddleware lets the browser form on an allowed origin post
// registrations. Requests from other origins pass through without CORS
// headers, so browsers block the response.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	allowed := routerService.config.AllowedOrigins
	allowAny := slices.Contains(allowed, "*")
	if len(allowed) == 0 {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set; cross-origin requests will be refused")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if !allowAny && !slices.Contains(allowed, origin) {
			routerService.GetLogger(c).Warn("CORS origin not allowed", "origin", origin)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, "+correlationHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Expose-Headers", correlationHeader+", Retry-After")
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware puts a deadline on the request context. Handlers run
// inline; a handler that overran without writing anything gets a 408.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	timeout := routerService.config.RequestTimeout

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			routerService.GetLogger(c).Warn("Request timeout detected", "route", c.FullPath())
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				apperrors.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
		}
	}
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := routerService.limiterFor(c)
		if limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		limit, window := limiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		limited, err := limiter.IsLimited(c.Request.Context(), clientIP)
		if err != nil {
			// Fail open on limiter backend errors.
			routerService.GetLogger(c).Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}

		if limited {
			retryAfter := strconv.Itoa(max(1, int(math.Ceil(window.Seconds()))))
			routerService.GetLogger(c).Warn("Rate limit exceeded", "client_ip", clientIP, "route", c.FullPath())
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
				Limit:      limit,
				Window:     window.String(),
				RetryAfter: retryAfter,
			}).ToJSON())
			return
		}

		c.Next()
	}
}
