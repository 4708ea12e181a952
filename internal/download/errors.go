package download

import (
	"errors"
	"fmt"
)

// Sentinel errors for the download package.
var (
	// ErrBusy is logged when a start request arrives while a transfer is active.
	ErrBusy = errors.New("transfer already active")

	// ErrServerStatus is returned when a transfer's response is not 2xx.
	ErrServerStatus = errors.New("server error")

	// ErrIncomplete is returned when the body ends before Content-Length bytes.
	ErrIncomplete = errors.New("transfer incomplete")

	// ErrNotFound is returned when a transfer record is not found in the database.
	ErrNotFound = errors.New("transfer not found")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StatusError carries the final HTTP status of a failed transfer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Server error %d", e.Code)
}

// Is makes errors.Is(err, ErrServerStatus) true for every StatusError.
func (e *StatusError) Is(target error) bool { return target == ErrServerStatus }
