package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for transport failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrCanceled indicates the caller's context was canceled.
	ErrCanceled = errors.New("request canceled")

	// ErrNetwork indicates a connection-level failure (refused, reset, DNS).
	ErrNetwork = errors.New("network error")

	// ErrTransport indicates any other failure to complete the exchange.
	ErrTransport = errors.New("transport error")
)

// TransportError is returned when a request could not complete.
// It keeps the original error in the chain for errors.Is/As.
type TransportError struct {
	// Op is the broker operation, e.g. "send_message" or "get_chunk".
	Op string
	// Kind is one of the sentinel kinds above.
	Kind error
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel kind.
func (e *TransportError) Is(target error) bool {
	return e.Kind == target
}

// NewTransportError classifies err and wraps it for op.
// Returns nil if err is nil.
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Kind: classifyError(err), Err: err}
}

// classifyError picks the sentinel kind for err: context errors first, then
// typed Timeout(), then message patterns.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout
	case containsAny(msg, "connection refused", "connection reset", "no route to host",
		"network is unreachable", "no such host", "dial tcp", "broken pipe", "eof"):
		return ErrNetwork
	default:
		return ErrTransport
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
