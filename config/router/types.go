package router

import (
	"github.com/akeren/launchwait/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

type ServiceResult struct {
	StatusCode int    `json:"code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`

	// Body, when set, is written as-is instead of the code/data/message envelope.
	Body any `json:"-"`
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

// routeKey identifies one registered handler. Path is the gin route pattern,
// which is what c.FullPath() reports at request time.
type routeKey struct {
	method string
	path   string
}

type routeBinding struct {
	controller *RESTController
	limiter    ratelimit.RateLimiter
}

func (result *ServiceResult) ToJSON() any {
	if result.Body != nil {
		return result.Body
	}

	return gin.H{
		"code":    result.StatusCode,
		"data":    result.Data,
		"message": result.Message,
	}
}
