package constants

import "time"

const (
	// WaitlistRoute is the single canonical registration path.
	WaitlistRoute = "/api/waitlist"

	// DefaultWaitlistRateLimitRequests caps registrations per client IP per
	// minute, tighter than the router-wide default.
	DefaultWaitlistRateLimitRequests = 30

	// WaitlistCountCacheKey holds the cached public waitlist size.
	WaitlistCountCacheKey = "waitlist:count"
)

// WaitlistCountCacheTTL bounds how stale the public count may get.
const WaitlistCountCacheTTL = 30 * time.Second

// Contract messages returned in the "error" field of registration responses.
const (
	MessageInvalidEmail       = "Invalid email"
	MessageInvalidRequestBody = "Invalid request body"
	MessageEmailRegistered    = "Email already registered"
)
