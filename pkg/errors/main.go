// Package errors classifies registration failures so handlers can map them
// onto HTTP statuses and caller-facing messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind separates the three outcomes a failed registration can have: the
// caller sent bad input, the address is already on the list, or the store
// failed.
type Kind string

const (
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindConflict       Kind = "CONFLICT"
	KindStore          Kind = "DATABASE_ERROR"
	KindUnknown        Kind = "UNKNOWN_ERROR"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports input the caller must correct. Nothing was
// stored.
func NewValidationError(message string, err error) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message, Err: err}
}

// NewConflictError reports an address that is already registered.
func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

// NewStoreError wraps any other persistence failure. Message reaches the
// caller unchanged.
func NewStoreError(message string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Err: err}
}

// KindOf returns "" for nil and KindUnknown for errors outside this package.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsValidationError(err error) bool { return KindOf(err) == KindInvalidRequest }
func IsConflictError(err error) bool   { return KindOf(err) == KindConflict }
func IsStoreError(err error) bool      { return KindOf(err) == KindStore }

var duplicateMarkers = []string{"duplicate key", "duplicated key", "unique constraint", "sqlstate 23505"}

// IsDuplicateKeyError matches uniqueness violations by message for drivers
// without a typed error.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if IsConflictError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
