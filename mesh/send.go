package mesh

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pithecene-io/mesh/broker"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/types"
)

// sendResponse is the body returned by the outbox on a first-chunk send.
type sendResponse struct {
	MessageID string `json:"messageId"`
}

// SendMessage sends one chunk of msg.
//
// The chunk number comes from msg's Mex-Chunk-Range header. An absent,
// blank, or unparseable header means a single-part send, which creates the
// remote message and returns its assigned id. A chunk number above 1 is a
// continuation of msg.MessageID and requires that id and a valid range.
//
// The returned Message carries the message id, the payload that was sent,
// and the response headers.
func (s *Service) SendMessage(ctx context.Context, msg *types.Message, token string) (*types.Message, error) {
	out, err := s.sendMessage(ctx, msg, token)
	if err != nil {
		return nil, s.classify(err)
	}
	return out, nil
}

func (s *Service) sendMessage(ctx context.Context, msg *types.Message, token string) (*types.Message, error) {
	if err := validateSend(msg, token); err != nil {
		return nil, err
	}

	r := chunk.ParseLenient(msg.Header(types.HeaderChunkRange))
	headers := broker.OutboundHeadersFrom(msg.Headers)
	payload := msg.Payload()

	if !r.IsContinuation() {
		resp, err := s.broker.SendMessage(ctx, token, headers, payload)
		if err != nil {
			return nil, err
		}
		if err := checkSuccess("send_message", resp); err != nil {
			return nil, err
		}

		var body sendResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, fmt.Errorf("decode send response: %w", err)
		}
		return sentMessage(body.MessageID, msg, resp), nil
	}

	if err := validateContinuation(msg, r); err != nil {
		return nil, err
	}

	resp, err := s.broker.SendChunk(ctx, token, headers, payload, msg.MessageID, r.Current)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess("send_chunk", resp); err != nil {
		return nil, err
	}
	return sentMessage(msg.MessageID, msg, resp), nil
}

func sentMessage(messageID string, in *types.Message, resp *broker.Response) *types.Message {
	return &types.Message{
		MessageID:     messageID,
		Headers:       resp.Header.Clone(),
		FileContent:   in.FileContent,
		StringContent: in.StringContent,
	}
}
