package resilience

import (
	"context"
	"errors"
	"net/http"
)

// TransientError marks a failed call as worth repeating. Clients return it
// for throttling, upstream 5xx and connection failures.
type TransientError struct {
	Err        error
	StatusCode int // 0 when no response was received
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as transient.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err carries a *TransientError. Cancellation
// and deadline errors are never transient, even when wrapped as such.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransientError
	return errors.As(err, &te)
}

// IsTransientHTTPStatus reports whether a response status means the same
// request may succeed later.
func IsTransientHTTPStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500 && code != http.StatusNotImplemented && code != http.StatusHTTPVersionNotSupported
}
