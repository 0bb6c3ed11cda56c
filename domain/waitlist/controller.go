package waitlist

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/akeren/launchwait/config/router"
	"github.com/akeren/launchwait/pkg/constants"
	apperrors "github.com/akeren/launchwait/pkg/errors"
	"github.com/akeren/launchwait/pkg/factory"
	"github.com/akeren/launchwait/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
)

const registrationLimiterName = "waitlist"

// Registration outcomes recorded on waitlist_registrations_total.
const (
	outcomeAccepted   = "accepted"
	outcomeInvalid    = "invalid"
	outcomeDuplicate  = "duplicate"
	outcomeStoreError = "store_error"
)

type registrationMetrics struct {
	registrations *prometheus.CounterVec
}

func newRegistrationMetrics(reg prometheus.Registerer) *registrationMetrics {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_registrations_total",
			Help: "Waitlist registration attempts by outcome.",
		},
		[]string{"outcome"},
	)

	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			counter = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}

	return &registrationMetrics{registrations: counter}
}

func (m *registrationMetrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// NewWaitlistController mounts POST /api/waitlist and GET /api/waitlist/count.
// Registration keeps its own bare {"success"} / {"error"} bodies; the count
// endpoint uses the standard envelope.
func NewWaitlistController(service WaitlistService, limiters factory.RateLimiterFactory, registrationsPerMinute int) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		constants.WaitlistRoute,
		func(rs *router.RouterService, c *router.RESTController) {
			metrics := newRegistrationMetrics(rs.MetricsRegisterer())
			registrationLimiter := createRegistrationRateLimiter(limiters, registrationsPerMinute)

			rs.AddPostHandler(c, registrationLimiter, "", registerHandler(service, metrics))
			rs.AddGetHandler(c, nil, "count", countHandler(service))
		},
	)
}

func createRegistrationRateLimiter(limiters factory.RateLimiterFactory, requests int) ratelimit.RateLimiter {
	if requests <= 0 {
		requests = constants.DefaultWaitlistRateLimitRequests
	}

	if limiters == nil {
		return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
			Requests: requests,
			Window:   time.Minute,
		})
	}

	return limiters.CreateRateLimiter(registrationLimiterName, requests, time.Minute)
}

func registerHandler(service WaitlistService, metrics *registrationMetrics) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req RegisterRequest

		// An empty body is treated as a submission without an email.
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			message := invalidFieldMessage(apperrors.FirstInvalidField(err, &req))
			logger.Warn("Failed to bind waitlist request", "error", err)
			metrics.observe(outcomeInvalid)
			return router.RawResult(http.StatusBadRequest, ErrorResponse{Error: message})
		}

		if err := service.Register(ctx.Request.Context(), &req); err != nil {
			metrics.observe(outcomeFor(err))
			return router.RawResult(
				apperrors.HTTPStatusCode(err),
				ErrorResponse{Error: apperrors.GetHumanReadableMessage(err)},
			)
		}

		metrics.observe(outcomeAccepted)
		return router.RawResult(http.StatusOK, RegisterResponse{Success: true})
	}
}

func countHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		count, err := service.Count(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(WaitlistCountResponse{Count: count}, "Waitlist count retrieved successfully")
	}
}

func outcomeFor(err error) string {
	switch {
	case apperrors.IsValidationError(err):
		return outcomeInvalid
	case apperrors.IsConflictError(err):
		return outcomeDuplicate
	default:
		return outcomeStoreError
	}
}
