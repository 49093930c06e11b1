// Package processing is the middle tier of the mailbox client.
//
// It adds cross-field validation on top of the foundation tier and composes
// send with tracking. Errors from the foundation tier are re-wrapped once:
// foundation Validation and DependencyValidation become processing
// DependencyValidation, foundation Dependency and Service become processing
// Dependency, and anything else becomes processing Service.
package processing

import (
	"context"

	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

// Foundation is the tier beneath processing. *mesh.Service implements it.
type Foundation interface {
	SendMessage(ctx context.Context, msg *types.Message, token string) (*types.Message, error)
	TrackMessage(ctx context.Context, messageID, token string) (*types.Message, error)
	RetrieveMessage(ctx context.Context, messageID, token string) (*types.Message, error)
	RetrieveMessages(ctx context.Context, token string) ([]string, error)
}

// Service performs processing-tier operations.
type Service struct {
	foundation Foundation
	fault      fault.Translator
}

// NewService creates a processing Service over f.
func NewService(f Foundation) *Service {
	return &Service{foundation: f, fault: fault.For(fault.TierProcessing)}
}

// SendMessage sends msg as a single unit and attaches its tracking record.
func (s *Service) SendMessage(ctx context.Context, msg *types.Message, token string) (*types.Message, error) {
	if err := validateSend(msg, token); err != nil {
		return nil, s.fault.Translate(err)
	}

	sent, err := s.foundation.SendMessage(ctx, msg, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}

	tracked, err := s.foundation.TrackMessage(ctx, sent.MessageID, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}

	sent.TrackingInfo = tracked.TrackingInfo
	return sent, nil
}

// SendChunk sends one chunk of a multi-part message without tracking.
// The chunk's Mex-Chunk-Range decides whether it creates the message or
// continues msg.MessageID.
func (s *Service) SendChunk(ctx context.Context, msg *types.Message, token string) (*types.Message, error) {
	if err := validateSend(msg, token); err != nil {
		return nil, s.fault.Translate(err)
	}

	sent, err := s.foundation.SendMessage(ctx, msg, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}
	return sent, nil
}

// TrackMessage fetches the tracking record of a sent message.
func (s *Service) TrackMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	if err := validateIDAndToken(messageID, token); err != nil {
		return nil, s.fault.Translate(err)
	}

	msg, err := s.foundation.TrackMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}
	return msg, nil
}

// RetrieveMessage downloads a complete message.
func (s *Service) RetrieveMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	if err := validateIDAndToken(messageID, token); err != nil {
		return nil, s.fault.Translate(err)
	}

	msg, err := s.foundation.RetrieveMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}
	return msg, nil
}

// RetrieveMessages lists the ids of messages waiting in the inbox.
func (s *Service) RetrieveMessages(ctx context.Context, token string) ([]string, error) {
	if err := validateToken(token); err != nil {
		return nil, s.fault.Translate(err)
	}

	ids, err := s.foundation.RetrieveMessages(ctx, token)
	if err != nil {
		return nil, s.fault.Translate(err)
	}
	return ids, nil
}
