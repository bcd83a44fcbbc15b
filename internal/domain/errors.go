package domain

import "errors"

var (
	// ErrValidation marks user input that was rejected. The wrapping message
	// is safe to show to the user.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an id, phase, or name does not match.
	ErrNotFound = errors.New("not found")
)
