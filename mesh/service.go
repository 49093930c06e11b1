package mesh

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pithecene-io/mesh/broker"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/fault"
)

// Service performs foundation-tier mailbox operations over a Broker.
// It holds no per-call state and is safe for concurrent use when the
// Broker is.
type Service struct {
	broker broker.Broker
	fault  fault.Translator
}

// NewService creates a foundation Service over b.
func NewService(b broker.Broker) *Service {
	return &Service{broker: b, fault: fault.For(fault.TierFoundation)}
}

// ResponseError reports a broker response whose status is not acceptable
// for the operation.
type ResponseError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Violations names the failing status against the operation.
func (e *ResponseError) Violations() fault.Data {
	return fault.Data{e.Op: {fmt.Sprintf("Unexpected status code %d", e.StatusCode)}}
}

// checkSuccess requires a 2xx status.
func checkSuccess(op string, resp *broker.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &ResponseError{Op: op, StatusCode: resp.StatusCode, Body: resp.Body}
}

// checkReceived requires 200 (complete) or 206 (more chunks follow).
func checkReceived(op string, resp *broker.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return nil
	default:
		return &ResponseError{Op: op, StatusCode: resp.StatusCode, Body: resp.Body}
	}
}

// classify converts any error produced inside an operation into a
// foundation *fault.Error.
func (s *Service) classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		te *broker.TransportError
		re *ResponseError
		ce *chunk.RangeError
	)
	switch {
	case errors.As(err, &te),
		errors.As(err, &re),
		errors.As(err, &ce),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return s.fault.Dependency(err)
	}

	return s.fault.Translate(err)
}
