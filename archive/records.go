package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pithecene-io/mesh/types"
)

// RecordKindMessage is the record_kind of an archived message.
const RecordKindMessage = "message"

// Direction is the transfer direction of an archived message.
type Direction string

// Directions.
const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

// Record is the metadata stored for one archived message.
// Mailbox, Day, and Direction are the Hive partition keys.
type Record struct {
	RecordKind string `json:"record_kind"`
	MessageID  string `json:"message_id"`

	// Partition keys
	Mailbox   string    `json:"mailbox"`
	Day       string    `json:"day"`
	Direction Direction `json:"direction"`

	Sender      string `json:"sender,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	WorkflowID  string `json:"workflow_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
	LocalID     string `json:"local_id,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`

	ChunkCount  int    `json:"chunk_count"`
	Bytes       int64  `json:"bytes"`
	Checksum    string `json:"checksum"`
	PayloadPath string `json:"payload_path"`
	Status      string `json:"status,omitempty"`

	Headers    map[string][]string `json:"headers,omitempty"`
	ArchivedAt string              `json:"archived_at"`
}

// newRecord builds the record for msg. Header values come from msg.Headers.
func newRecord(mailbox string, dir Direction, msg *types.Message, chunks int, at time.Time) Record {
	payload := msg.Payload()
	sum := sha256.Sum256(payload)

	r := Record{
		RecordKind:  RecordKindMessage,
		MessageID:   msg.MessageID,
		Mailbox:     mailbox,
		Day:         at.UTC().Format(time.DateOnly),
		Direction:   dir,
		Sender:      msg.Header(types.HeaderFrom),
		Recipient:   msg.Header(types.HeaderTo),
		WorkflowID:  msg.Header(types.HeaderWorkflowID),
		Subject:     msg.Header(types.HeaderSubject),
		LocalID:     msg.Header(types.HeaderLocalID),
		FileName:    msg.Header(types.HeaderFileName),
		ContentType: msg.Header(types.HeaderContentType),
		ChunkCount:  chunks,
		Bytes:       int64(len(payload)),
		Checksum:    "sha256:" + hex.EncodeToString(sum[:]),
		ArchivedAt:  at.UTC().Format(time.RFC3339Nano),
	}
	if msg.TrackingInfo != nil {
		r.Status = msg.TrackingInfo.Status
	}
	if msg.Headers.Len() > 0 {
		r.Headers = msg.Headers.Map()
	}
	return r
}

// toMap converts r to the generic form written through the JSONL codec.
func (r Record) toMap() map[string]any {
	m := map[string]any{
		"record_kind":  r.RecordKind,
		"message_id":   r.MessageID,
		"mailbox":      r.Mailbox,
		"day":          r.Day,
		"direction":    string(r.Direction),
		"chunk_count":  r.ChunkCount,
		"bytes":        r.Bytes,
		"checksum":     r.Checksum,
		"payload_path": r.PayloadPath,
		"archived_at":  r.ArchivedAt,
	}
	optional := map[string]string{
		"sender":       r.Sender,
		"recipient":    r.Recipient,
		"workflow_id":  r.WorkflowID,
		"subject":      r.Subject,
		"local_id":     r.LocalID,
		"file_name":    r.FileName,
		"content_type": r.ContentType,
		"status":       r.Status,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}
	if len(r.Headers) > 0 {
		m["headers"] = r.Headers
	}
	return m
}

// recordFromAny decodes a record read back from the dataset.
func recordFromAny(item any) (Record, bool) {
	raw, err := json.Marshal(item)
	if err != nil {
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, false
	}
	return r, r.RecordKind == RecordKindMessage
}

// validateMessageID rejects ids that cannot be used as a file name.
func validateMessageID(id string) error {
	if id == "" || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidMessageID, id)
	}
	for _, c := range id {
		if c == '/' || c == '\\' {
			return fmt.Errorf("%w: %q", ErrInvalidMessageID, id)
		}
	}
	return nil
}
