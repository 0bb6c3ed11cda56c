package models

import (
	"time"

	"gorm.io/gorm"
)

// Interest categories a visitor can pick when joining the waitlist.
const (
	InterestGeneral     = "general"
	InterestBeta        = "beta"
	InterestPartnership = "partnership"
	InterestEarlyAccess = "early-access"
)

// Interests lists every accepted interest value.
var Interests = []string{
	InterestGeneral,
	InterestBeta,
	InterestPartnership,
	InterestEarlyAccess,
}

// IsKnownInterest reports whether v is one of Interests.
func IsKnownInterest(v string) bool {
	for _, interest := range Interests {
		if interest == v {
			return true
		}
	}
	return false
}

// WaitlistEntry is created once per address and never updated or deleted.
// Email is stored normalized, which makes the unique index case-insensitive.
type WaitlistEntry struct {
	gorm.Model
	Email           string     `gorm:"not null;uniqueIndex;size:255"`
	Name            string     `gorm:"size:255"`
	Interest        string     `gorm:"not null;default:general;size:32"`
	SubmittedAt     time.Time  `gorm:"not null"`
	ClientTimestamp *time.Time `gorm:"column:client_timestamp"`
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Interest == "" {
		e.Interest = InterestGeneral
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now().UTC()
	}
	return nil
}
