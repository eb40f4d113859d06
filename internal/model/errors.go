package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when a profile upsert hits the
	// username uniqueness constraint. Callers surface it with a message
	// distinct from generic persistence errors.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrEmailTaken is returned when sign-up hits the email uniqueness
	// constraint.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password
	// so sign-in failures do not reveal which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionMissing means no authenticated session could be resolved.
	// It is an expected state, not a failure: callers branch to the
	// unauthenticated path.
	ErrSessionMissing = errors.New("auth session missing")

	// ErrEmptyNote is returned when note content is empty or whitespace.
	ErrEmptyNote = errors.New("note content is empty")
)

// ValidationError reports a field-specific validation failure. It blocks
// persistence and is surfaced next to the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
