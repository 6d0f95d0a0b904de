package storage

import "errors"

// Storage errors shared by all campaign store backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// Callers treat it as a signal, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
