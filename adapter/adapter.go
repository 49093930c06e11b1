// Package adapter defines the notification boundary for completed transfers.
//
// Adapters tell downstream systems that a message was sent or retrieved.
// Delivery retries live here; the transfer engine never retries.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/mesh/types"
)

// EventTypeTransferCompleted is the event_type of every published event.
const EventTypeTransferCompleted = "transfer_completed"

// Transfer directions.
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// DefaultBackoff is the delay before the first retry. Later retries double it.
const DefaultBackoff = 500 * time.Millisecond

// TransferCompletedEvent is the payload published after a transfer finishes.
type TransferCompletedEvent struct {
	EventType     string `json:"event_type"` // always "transfer_completed"
	ClientVersion string `json:"client_version"`
	Direction     string `json:"direction"` // outbound or inbound
	MessageID     string `json:"message_id"`
	Mailbox       string `json:"mailbox"`
	Recipient     string `json:"recipient,omitempty"`
	WorkflowID    string `json:"workflow_id,omitempty"`
	ChunkCount    int    `json:"chunk_count"`
	Bytes         int64  `json:"bytes"`
	Status        string `json:"status,omitempty"`
	ArchivePath   string `json:"archive_path,omitempty"`
	Timestamp     string `json:"timestamp"` // RFC 3339
}

// NewTransferCompleted builds the event for msg.
func NewTransferCompleted(direction, mailbox string, msg *types.Message, chunks int, at time.Time) *TransferCompletedEvent {
	e := &TransferCompletedEvent{
		EventType:     EventTypeTransferCompleted,
		ClientVersion: types.Version,
		Direction:     direction,
		MessageID:     msg.MessageID,
		Mailbox:       mailbox,
		Recipient:     msg.Header(types.HeaderTo),
		WorkflowID:    msg.Header(types.HeaderWorkflowID),
		ChunkCount:    chunks,
		Bytes:         int64(len(msg.Payload())),
		Timestamp:     at.UTC().Format(time.RFC3339),
	}
	if msg.TrackingInfo != nil {
		e.Status = msg.TrackingInfo.Status
	}
	return e
}

// Adapter publishes transfer events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *TransferCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Retry runs attempt up to 1+retries times with exponential backoff starting
// at base. It stops early when permanent reports the error as non-retriable
// or ctx is done. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, base time.Duration, permanent func(error) bool, attempt func(context.Context) error) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * base
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
