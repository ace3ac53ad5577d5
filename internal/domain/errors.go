package domain

import "errors"

var (
	// ErrValidation marks caller input that cannot be processed.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")

	// ErrServiceNotFound marks a verification request naming an unknown
	// provider, as opposed to a known provider with no credentials.
	ErrServiceNotFound = errors.New("verification service not found")
)
