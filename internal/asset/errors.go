package asset

import "errors"

var (
	// ErrInvalidURL is returned when a descriptor's remote URL cannot be
	// mapped to a local file name.
	ErrInvalidURL = errors.New("invalid asset url")

	// ErrNotFound is returned when the asset has no local copy.
	ErrNotFound = errors.New("asset not found")

	// ErrStorage wraps filesystem failures while moving or removing assets.
	ErrStorage = errors.New("asset storage failure")
)
