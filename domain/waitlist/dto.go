package waitlist

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/akeren/launchwait/internal/models"
	"github.com/akeren/launchwait/pkg/emailaddr"
)

// RegisterRequest is the body of POST /api/waitlist. Timestamp is the
// client's clock and is kept raw so a bad value never fails decoding.
type RegisterRequest struct {
	Email     string          `json:"email" validate:"required,waitlist_email"`
	Name      string          `json:"name" validate:"max=255"`
	Interest  string          `json:"interest" validate:"omitempty,waitlist_interest"`
	Timestamp json.RawMessage `json:"timestamp,omitempty" validate:"-"`
}

type RegisterResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type WaitlistCountResponse struct {
	Count int64 `json:"count"`
}

func (req *RegisterRequest) sanitize() {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Interest = strings.ToLower(strings.TrimSpace(req.Interest))
}

// clientTimestamp returns the parsed RFC 3339 timestamp, or nil when it is
// absent, not a string, or unparsable.
func (req *RegisterRequest) clientTimestamp() *time.Time {
	if len(req.Timestamp) == 0 {
		return nil
	}

	var raw string
	if err := json.Unmarshal(req.Timestamp, &raw); err != nil {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}

	parsed = parsed.UTC()
	return &parsed
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *RegisterRequest, submittedAt time.Time) *models.WaitlistEntry {
	if req == nil {
		return nil
	}

	interest := req.Interest
	if interest == "" {
		interest = models.InterestGeneral
	}

	return &models.WaitlistEntry{
		Email:           emailaddr.Normalize(req.Email),
		Name:            req.Name,
		Interest:        interest,
		SubmittedAt:     submittedAt.UTC(),
		ClientTimestamp: req.clientTimestamp(),
	}
}
