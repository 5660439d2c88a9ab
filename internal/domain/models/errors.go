package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Specific errors below wrap one of these so
// callers can branch with errors.Is on either the kind or the exact cause.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTooEarly            = errors.New("too early")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrTransient           = errors.New("transient failure")
)

var (
	// ErrAlreadyClosed indicates a ProductionSummary already exists for the day.
	ErrAlreadyClosed = fmt.Errorf("%w: day already closed", ErrConflict)
	// ErrDuplicateProduction indicates a record exists for the same animal and day.
	ErrDuplicateProduction = fmt.Errorf("%w: production already recorded for animal on this day", ErrConflict)
	// ErrAnimalNotReady indicates the animal is not flagged ready for production.
	ErrAnimalNotReady = fmt.Errorf("%w: animal is not ready for production", ErrInvalidState)
	// ErrDayClosed is returned when posting to a day that has been closed.
	ErrDayClosed = fmt.Errorf("%w: day is closed for posting", ErrInvalidState)
	// ErrLaterDayClosed is returned when closing a day older than the latest summary.
	ErrLaterDayClosed = fmt.Errorf("%w: a later day is already closed", ErrInvalidState)
)

// Kind returns the short machine-readable name of the error kind wrapped by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrTooEarly):
		return "too_early"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "internal"
	}
}

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transient wraps a persistence failure so callers can tell it apart from a
// business rejection.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}
