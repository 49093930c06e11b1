package orchestration

import (
	"context"

	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

func requireID(messageID string) error {
	return fault.NewValidator(fault.ReasonInvalidArgs).RequireText("MessageId", messageID).Err()
}

// RetrieveMessage downloads a complete message.
func (s *Service) RetrieveMessage(ctx context.Context, messageID string) (*types.Message, error) {
	fields := map[string]any{"message_id": messageID}
	if err := requireID(messageID); err != nil {
		return nil, s.fail("retrieve", err, fields)
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail("retrieve", err, fields)
	}

	msg, err := s.processor.RetrieveMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.fail("retrieve", err, fields)
	}

	chunks := max(1, chunk.ParseLenient(msg.Header(types.HeaderChunkRange)).Total)
	s.metrics.RecordRetrieved(chunks, int64(len(msg.FileContent)))
	fields["chunks"] = chunks
	fields["bytes"] = len(msg.FileContent)
	s.logger.Info("message retrieved", fields)
	return msg, nil
}

// TrackMessage fetches the tracking record of a sent message.
func (s *Service) TrackMessage(ctx context.Context, messageID string) (*types.Message, error) {
	fields := map[string]any{"message_id": messageID}
	if err := requireID(messageID); err != nil {
		return nil, s.fail("track", err, fields)
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail("track", err, fields)
	}

	msg, err := s.processor.TrackMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.fail("track", err, fields)
	}

	s.metrics.IncTracked()
	if msg.TrackingInfo != nil {
		fields["status"] = msg.TrackingInfo.Status
	}
	s.logger.Debug("message tracked", fields)
	return msg, nil
}

// RetrieveMessages lists the ids of messages waiting in the inbox.
func (s *Service) RetrieveMessages(ctx context.Context) ([]string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail("inbox", err, nil)
	}

	ids, err := s.processor.RetrieveMessages(ctx, token)
	if err != nil {
		return nil, s.fail("inbox", err, nil)
	}

	s.metrics.IncInboxListing()
	s.logger.Debug("inbox listed", map[string]any{"count": len(ids)})
	return ids, nil
}
