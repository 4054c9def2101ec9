package errors

import "errors"

// Application-wide sentinel errors. Services wrap these with %w so that
// handlers can map them to HTTP status categories with errors.Is.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized covers failed authentication and invalid sessions.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned for rejected input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts, e.g. registering an
	// email that already has an account.
	ErrConflict = errors.New("resource state conflict")
)
