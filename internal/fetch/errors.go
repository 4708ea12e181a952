package fetch

import (
	"errors"
	"fmt"
)

// ErrTransport matches any connection-level failure (DNS, refused, reset,
// truncated body).
var ErrTransport = errors.New("transport error")

// TransportError records the endpoint that could not be reached.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for every TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
