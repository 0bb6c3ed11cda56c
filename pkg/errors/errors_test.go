package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("Invalid email", nil), StatusBadRequest},
		{"conflict", NewConflictError("Email already registered", nil), StatusConflict},
		{"store", NewStoreError("connection refused", nil), StatusInternalServerError},
		{"wrapped conflict", fmt.Errorf("register: %w", NewConflictError("dup", nil)), StatusConflict},
		{"plain error", errors.New("boom"), StatusInternalServerError},
		{"nil", nil, StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestGetHumanReadableMessage(t *testing.T) {
	assert.Equal(t, "dial tcp: connection refused", GetHumanReadableMessage(NewStoreError("dial tcp: connection refused", errors.New("x"))))
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(errors.New("raw driver text")))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_waitlist_entries_email" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKeyError(errors.New("UNIQUE constraint failed: waitlist_entries.email")))
	assert.True(t, IsDuplicateKeyError(NewConflictError("exists", nil)))
	assert.False(t, IsDuplicateKeyError(errors.New("connection reset by peer")))
	assert.False(t, IsDuplicateKeyError(nil))
}

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=3"`
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	err := validator.New().Struct(&sample{Email: "nope", Name: "toolong"})

	list := FormatValidationErrors(err, &sample{})
	if assert.Len(t, list, 2) {
		assert.Equal(t, "email", list[0].Field)
		assert.Equal(t, "Invalid email format", list[0].Message)
		assert.Equal(t, "name", list[1].Field)
		assert.Equal(t, "Must not exceed 3 characters", list[1].Message)
	}
	assert.Equal(t, "email", FirstInvalidField(err, &sample{}))
}

func TestFormatValidationErrors_TypeError(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"email": 42}`), &s)

	assert.Equal(t, "email", FirstInvalidField(err, &s))
	assert.Equal(t, "", FirstInvalidField(errors.New("eof"), &s))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindStore, KindOf(fmt.Errorf("count: %w", NewStoreError("down", nil))))
	assert.True(t, IsStoreError(NewStoreError("down", nil)))
	assert.False(t, IsValidationError(NewConflictError("dup", nil)))
}
