package orchestration

import (
	"context"
	"fmt"

	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

// SendMessage sends msg, splitting its payload into chunks of at most
// MaxChunkSize bytes.
//
// A payload that fits in one chunk is sent and tracked in one processing
// call. Otherwise chunk 1 creates the remote message, chunks 2..n are sent
// in order against its id, and the message is tracked once the last chunk
// is accepted. Every chunk carries Mex-Chunk-Range "{i:n}". A failure on
// any chunk fails the whole send and no Message is returned.
func (s *Service) SendMessage(ctx context.Context, msg *types.Message) (*types.Message, error) {
	if msg == nil {
		return nil, s.fail("send", &fault.InvalidError{
			Reason: fault.ReasonNullMessage,
			Data:   fault.Data{"Message": {fault.MessageRequired}},
		}, nil)
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail("send", err, nil)
	}

	pieces := chunk.Split(msg.Payload(), s.maxChunk)
	fields := map[string]any{"chunks": len(pieces), "bytes": len(msg.Payload())}

	out, err := s.send(ctx, msg, pieces, token)
	if err != nil {
		return nil, s.fail("send", err, fields)
	}

	s.metrics.RecordSent(len(pieces), int64(len(msg.Payload())))
	fields["message_id"] = out.MessageID
	s.logger.Info("message sent", fields)
	return out, nil
}

func (s *Service) send(ctx context.Context, msg *types.Message, pieces [][]byte, token string) (*types.Message, error) {
	n := len(pieces)

	if n == 1 {
		sent, err := s.processor.SendMessage(ctx, chunkMessage(msg, "", pieces[0], 1, 1), token)
		if err != nil {
			return nil, err
		}
		return result(msg, sent, sent), nil
	}

	first, err := s.processor.SendChunk(ctx, chunkMessage(msg, "", pieces[0], 1, n), token)
	if err != nil {
		return nil, err
	}

	for i := 2; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("send chunk %d of %d: %w", i, n, err)
		}
		if _, err := s.processor.SendChunk(ctx, chunkMessage(msg, first.MessageID, pieces[i-1], i, n), token); err != nil {
			return nil, err
		}
	}

	tracked, err := s.processor.TrackMessage(ctx, first.MessageID, token)
	if err != nil {
		return nil, err
	}
	return result(msg, first, tracked), nil
}

// chunkMessage builds the outbound Message for chunk i of n.
func chunkMessage(msg *types.Message, messageID string, piece []byte, i, n int) *types.Message {
	headers := msg.Headers.Clone()
	headers.Set(types.HeaderChunkRange, chunk.Range{Current: i, Total: n}.String())
	return &types.Message{
		MessageID:   messageID,
		Headers:     headers,
		FileContent: piece,
	}
}

// result assembles the caller's view of a completed send.
func result(in, first, tracked *types.Message) *types.Message {
	return &types.Message{
		MessageID:     first.MessageID,
		Headers:       first.Headers,
		FileContent:   in.FileContent,
		StringContent: in.StringContent,
		TrackingInfo:  tracked.TrackingInfo,
	}
}
