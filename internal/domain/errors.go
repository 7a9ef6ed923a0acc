package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-specific errors below wrap it, so errors.Is(err, ErrValidation)
	// identifies every rejected input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidUpdates is returned when a partial update names a field that
	// may not be modified. No field of such an update is applied.
	ErrInvalidUpdates = errors.New("invalid updates")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Field validation errors. Each wraps ErrValidation.
var (
	ErrEmptyName        = newValidationError("name is required")
	ErrEmptyEmail       = newValidationError("email is required")
	ErrInvalidEmail     = newValidationError("email is invalid")
	ErrEmptyPassword    = newValidationError("password is required")
	ErrPasswordTooShort = newValidationError("password must be at least 7 characters long")
	ErrPasswordTooLong  = newValidationError("password must be at most 72 bytes long")
	ErrPasswordContains = newValidationError(`password cannot contain "password"`)
	ErrNegativeAge      = newValidationError("age must be a positive number")
	ErrEmptyDescription = newValidationError("description is required")
	ErrEmptyOwner       = newValidationError("owner is required")
)

func newValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
