// Package broker performs the individual mailbox HTTP calls.
//
// A Broker carries no sequencing or validation logic: it sends one request
// with pre-extracted header values and returns the response envelope for any
// status code. Deciding whether a status is acceptable belongs to the caller.
// Connectivity failures, timeouts, and cancellation are returned as
// *TransportError.
package broker

import (
	"context"

	"github.com/pithecene-io/mesh/types"
)

// OutboundHeaders are the header values sent with every outbound chunk.
type OutboundHeaders struct {
	From            string
	To              string
	WorkflowID      string
	ChunkRange      string
	Subject         string
	LocalID         string
	FileName        string
	ContentChecksum string
	ContentType     string
	ContentEncoding string
	Accept          string
}

// OutboundHeadersFrom extracts the first value of each outbound header.
func OutboundHeadersFrom(h types.Headers) OutboundHeaders {
	return OutboundHeaders{
		From:            h.Get(types.HeaderFrom),
		To:              h.Get(types.HeaderTo),
		WorkflowID:      h.Get(types.HeaderWorkflowID),
		ChunkRange:      h.Get(types.HeaderChunkRange),
		Subject:         h.Get(types.HeaderSubject),
		LocalID:         h.Get(types.HeaderLocalID),
		FileName:        h.Get(types.HeaderFileName),
		ContentChecksum: h.Get(types.HeaderContentChecksum),
		ContentType:     h.Get(types.HeaderContentType),
		ContentEncoding: h.Get(types.HeaderContentEncoding),
		Accept:          h.Get(types.HeaderAccept),
	}
}

// pairs returns the non-empty header values in wire order.
func (o OutboundHeaders) pairs() [][2]string {
	all := [][2]string{
		{types.HeaderFrom, o.From},
		{types.HeaderTo, o.To},
		{types.HeaderWorkflowID, o.WorkflowID},
		{types.HeaderChunkRange, o.ChunkRange},
		{types.HeaderSubject, o.Subject},
		{types.HeaderLocalID, o.LocalID},
		{types.HeaderFileName, o.FileName},
		{types.HeaderContentChecksum, o.ContentChecksum},
		{types.HeaderContentType, o.ContentType},
		{types.HeaderContentEncoding, o.ContentEncoding},
		{types.HeaderAccept, o.Accept},
	}
	out := all[:0]
	for _, p := range all {
		if p[1] != "" {
			out = append(out, p)
		}
	}
	return out
}

// Response is the envelope of a single mailbox call.
type Response struct {
	StatusCode int
	// Header holds every response header, protocol and Mex-* alike.
	Header types.Headers
	Body   []byte
}

// Broker performs single mailbox calls.
type Broker interface {
	// SendMessage uploads the first (or only) chunk and creates the remote
	// message. The assigned id is returned in the JSON body.
	SendMessage(ctx context.Context, token string, headers OutboundHeaders, body []byte) (*Response, error)

	// SendChunk uploads continuation chunk chunkNumber of messageID.
	SendChunk(ctx context.Context, token string, headers OutboundHeaders, body []byte, messageID string, chunkNumber int) (*Response, error)

	// GetMessage downloads chunk 1 of messageID. Status 200 means the body is
	// complete; 206 means more chunks follow.
	GetMessage(ctx context.Context, messageID, token string) (*Response, error)

	// GetChunk downloads continuation chunk chunkNumber of messageID.
	GetChunk(ctx context.Context, messageID string, chunkNumber int, token string) (*Response, error)

	// TrackMessage fetches the tracking record of a sent message.
	TrackMessage(ctx context.Context, messageID, token string) (*Response, error)

	// ListMessages lists the ids of messages waiting in the inbox.
	ListMessages(ctx context.Context, token string) (*Response, error)
}
