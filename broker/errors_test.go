package broker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pithecene-io/mesh/types"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o" }
func (timeoutErr) Timeout() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"canceled", fmt.Errorf("do: %w", context.Canceled), ErrCanceled},
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"typed timeout", timeoutErr{}, ErrTimeout},
		{"timeout message", errors.New("Client.Timeout exceeded while awaiting headers"), ErrTimeout},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ErrNetwork},
		{"dns", errors.New("lookup mesh.invalid: no such host"), ErrNetwork},
		{"reset", errors.New("read: connection reset by peer"), ErrNetwork},
		{"other", errors.New("something else"), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransportError_Chain(t *testing.T) {
	root := errors.New("dial tcp: connection refused")
	err := NewTransportError("send_chunk", root)

	if !errors.Is(err, root) {
		t.Error("root cause must be reachable")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("kind must match via errors.Is")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("must not match other kinds")
	}
}

func TestNewTransportError_Nil(t *testing.T) {
	if NewTransportError("op", nil) != nil {
		t.Error("expected nil")
	}
}

func TestOutboundHeadersFrom(t *testing.T) {
	h := testHeaders()
	o := OutboundHeadersFrom(h)
	if o.From != "A" || o.To != "B" || o.WorkflowID != "WF" || o.ChunkRange != "{1:1}" {
		t.Errorf("OutboundHeadersFrom = %+v", o)
	}
	if len(o.pairs()) != 4 {
		t.Errorf("pairs = %v, want only the four non-empty values", o.pairs())
	}
}

func testHeaders() types.Headers {
	return types.NewHeaders(
		types.HeaderFrom, "A",
		types.HeaderTo, "B",
		types.HeaderWorkflowID, "WF",
		types.HeaderChunkRange, "{1:1}",
	)
}
