package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnsupported means the capability does not exist on this backend. Not retryable.
	ErrBackendUnsupported = errors.New("capability not supported")
	// ErrBackendUnavailable means the capability exists but is not ready yet.
	ErrBackendUnavailable = errors.New("capability not ready")
)

// InvocationError is a transport or parse failure from a backend.
type InvocationError struct {
	Backend    string
	Capability Capability
	Status     int
	Message    string
	Cause      error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Backend, e.Capability, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// IsSkippable reports whether err means the backend should be passed over without
// counting as a failed attempt.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrBackendUnsupported) || errors.Is(err, ErrBackendUnavailable)
}

// StateError wraps the sentinel matching a non-available state.
func StateError(backend string, c Capability, state Availability) error {
	if state == Unsupported || state == "" {
		return fmt.Errorf("%s %s: %w", backend, c, ErrBackendUnsupported)
	}
	return fmt.Errorf("%s %s is %s: %w", backend, c, state, ErrBackendUnavailable)
}
