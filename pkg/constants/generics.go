package constants

import "time"

// Router-wide rate limit applied to handlers without their own limiter and
// to unmatched routes.
const (
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute
)
