package router

import (
	"net/http"

	"github.com/akeren/launchwait/internal/log"
)

// GetLogger returns the correlated logger injected for this request.
func GetLogger(ctx *RequestContext) *log.Logger {
	if l, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok {
		return l
	}

	return log.NewLoggerWithJSONOutput().WithCorrelationID(ctx.Request.Context())
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too Many Requests",
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return ErrorResult(http.StatusInternalServerError, message, nil)
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

// RawResult writes body verbatim for endpoints whose contract predates the envelope.
func RawResult(statusCode int, body any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Body:       body,
	}
}
