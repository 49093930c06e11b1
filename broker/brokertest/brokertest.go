// Package brokertest provides in-memory Broker implementations for tests.
//
// Recorder returns scripted responses and records every call. Mailbox is a
// small stateful mailbox that accepts chunked sends and serves them back
// through the inbox, splitting retrieval the same way the sender chunked it.
package brokertest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pithecene-io/mesh/broker"
	"github.com/pithecene-io/mesh/types"
)

// Call is one recorded broker call.
type Call struct {
	// Op is the broker method name, e.g. "SendChunk".
	Op          string
	Token       string
	MessageID   string
	ChunkNumber int
	Headers     broker.OutboundHeaders
	Body        []byte
}

// HandlerFunc produces the outcome of a call.
type HandlerFunc func(ctx context.Context, c Call) (*broker.Response, error)

// Recorder is a Broker that records calls and delegates outcomes to Handler.
// A nil Handler answers every call with an empty 200 response.
type Recorder struct {
	Handler HandlerFunc

	mu    sync.Mutex
	calls []Call
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

func (r *Recorder) record(ctx context.Context, c Call) (*broker.Response, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	h := r.Handler
	r.mu.Unlock()

	if h == nil {
		return Status(http.StatusOK), nil
	}
	return h(ctx, c)
}

// SendMessage records a first-chunk send.
func (r *Recorder) SendMessage(ctx context.Context, token string, headers broker.OutboundHeaders, body []byte) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "SendMessage", Token: token, Headers: headers, Body: body})
}

// SendChunk records a continuation send.
func (r *Recorder) SendChunk(ctx context.Context, token string, headers broker.OutboundHeaders, body []byte, messageID string, chunkNumber int) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "SendChunk", Token: token, Headers: headers, Body: body, MessageID: messageID, ChunkNumber: chunkNumber})
}

// GetMessage records an initial retrieval.
func (r *Recorder) GetMessage(ctx context.Context, messageID, token string) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "GetMessage", Token: token, MessageID: messageID})
}

// GetChunk records a continuation retrieval.
func (r *Recorder) GetChunk(ctx context.Context, messageID string, chunkNumber int, token string) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "GetChunk", Token: token, MessageID: messageID, ChunkNumber: chunkNumber})
}

// TrackMessage records a tracking call.
func (r *Recorder) TrackMessage(ctx context.Context, messageID, token string) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "TrackMessage", Token: token, MessageID: messageID})
}

// ListMessages records an inbox listing.
func (r *Recorder) ListMessages(ctx context.Context, token string) (*broker.Response, error) {
	return r.record(ctx, Call{Op: "ListMessages", Token: token})
}

// Status returns an empty response with the given status.
func Status(code int) *broker.Response {
	return &broker.Response{StatusCode: code, Body: []byte{}}
}

// Bytes returns a response with body and alternating header key/value pairs.
func Bytes(code int, body []byte, headerPairs ...string) *broker.Response {
	return &broker.Response{StatusCode: code, Header: types.NewHeaders(headerPairs...), Body: body}
}

// JSON returns a response with v encoded as the body.
// It panics if v cannot be encoded.
func JSON(code int, v any) *broker.Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Bytes(code, b, types.HeaderContentType, "application/json")
}

var (
	_ broker.Broker = (*Recorder)(nil)
	_ broker.Broker = (*Mailbox)(nil)
)
