package download

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	// Verify errors are distinct
	if errors.Is(ErrServerStatus, ErrIncomplete) {
		t.Error("ErrServerStatus should not equal ErrIncomplete")
	}
	if errors.Is(ErrNotFound, ErrInvalidTransition) {
		t.Error("ErrNotFound should not equal ErrInvalidTransition")
	}

	errs := []error{ErrServerStatus, ErrIncomplete, ErrNotFound, ErrInvalidTransition}
	for _, err := range errs {
		if err.Error() == "" {
			t.Errorf("error %v should have a message", err)
		}
	}
}

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("transfer: %w", &StatusError{Code: 503})

	if !errors.Is(err, ErrServerStatus) {
		t.Error("StatusError should match ErrServerStatus")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 503 {
		t.Errorf("expected StatusError 503, got %v", err)
	}
	if se.Error() != "Server error 503" {
		t.Errorf("Error() = %q, want %q", se.Error(), "Server error 503")
	}
}
