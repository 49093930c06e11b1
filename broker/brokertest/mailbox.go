package brokertest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/pithecene-io/mesh/broker"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/types"
)

type stored struct {
	headers broker.OutboundHeaders
	total   int
	chunks  [][]byte
}

func (s *stored) complete() bool {
	return len(s.chunks) == s.total
}

func (s *stored) size() int {
	n := 0
	for _, c := range s.chunks {
		n += len(c)
	}
	return n
}

// Mailbox is a stateful in-memory mailbox. Every completed send is
// delivered to its own inbox, so a test can send and then retrieve.
type Mailbox struct {
	// Token, when set, is required on every call; other tokens get 403.
	Token string

	mu       sync.Mutex
	seq      int
	messages map[string]*stored
	inbox    []string
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{messages: make(map[string]*stored)}
}

func (m *Mailbox) authorized(token string) bool {
	return m.Token == "" || m.Token == token
}

// SendMessage stores chunk 1 of a new message.
func (m *Mailbox) SendMessage(_ context.Context, token string, headers broker.OutboundHeaders, body []byte) (*broker.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.authorized(token) {
		return Status(http.StatusForbidden), nil
	}

	total := 1
	if r, err := chunk.Parse(headers.ChunkRange); err == nil {
		total = r.Total
	}

	m.seq++
	id := fmt.Sprintf("20260101000000_%06d", m.seq)
	s := &stored{headers: headers, total: total, chunks: [][]byte{append([]byte{}, body...)}}
	m.messages[id] = s
	if s.complete() {
		m.inbox = append(m.inbox, id)
	}

	return JSON(http.StatusAccepted, map[string]string{"messageID": id}), nil
}

// SendChunk appends the next chunk of an existing message. Chunks must
// arrive in order.
func (m *Mailbox) SendChunk(_ context.Context, token string, _ broker.OutboundHeaders, body []byte, messageID string, chunkNumber int) (*broker.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.authorized(token) {
		return Status(http.StatusForbidden), nil
	}
	s, ok := m.messages[messageID]
	if !ok {
		return Status(http.StatusNotFound), nil
	}
	if chunkNumber != len(s.chunks)+1 || chunkNumber > s.total {
		return Status(http.StatusBadRequest), nil
	}

	s.chunks = append(s.chunks, append([]byte{}, body...))
	if s.complete() {
		m.inbox = append(m.inbox, messageID)
	}
	return JSON(http.StatusAccepted, map[string]string{"messageID": messageID}), nil
}

// GetMessage serves chunk 1: 200 for a single-part message, 206 otherwise.
func (m *Mailbox) GetMessage(_ context.Context, messageID, token string) (*broker.Response, error) {
	return m.serve(messageID, 1, token)
}

// GetChunk serves chunk chunkNumber.
func (m *Mailbox) GetChunk(_ context.Context, messageID string, chunkNumber int, token string) (*broker.Response, error) {
	return m.serve(messageID, chunkNumber, token)
}

func (m *Mailbox) serve(messageID string, n int, token string) (*broker.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.authorized(token) {
		return Status(http.StatusForbidden), nil
	}
	s, ok := m.messages[messageID]
	if !ok || !s.complete() || n < 1 || n > s.total {
		return Status(http.StatusNotFound), nil
	}

	status := http.StatusOK
	if s.total > 1 && n < s.total {
		status = http.StatusPartialContent
	}
	return Bytes(status, append([]byte{}, s.chunks[n-1]...),
		types.HeaderContentType, "application/octet-stream",
		types.HeaderFrom, s.headers.From,
		types.HeaderTo, s.headers.To,
		types.HeaderWorkflowID, s.headers.WorkflowID,
		types.HeaderChunkRange, chunk.Range{Current: n, Total: s.total}.String(),
	), nil
}

// TrackMessage reports the delivery state of a sent message.
func (m *Mailbox) TrackMessage(_ context.Context, messageID, token string) (*broker.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.authorized(token) {
		return Status(http.StatusForbidden), nil
	}
	s, ok := m.messages[messageID]
	if !ok {
		return Status(http.StatusNotFound), nil
	}

	status := "Uploading"
	if s.complete() {
		status = "Accepted"
	}
	return JSON(http.StatusOK, map[string]any{
		"messageId":     messageID,
		"localId":       s.headers.LocalID,
		"sender":        s.headers.From,
		"recipient":     s.headers.To,
		"workflowId":    s.headers.WorkflowID,
		"fileName":      s.headers.FileName,
		"chunkCount":    s.total,
		"fileSize":      s.size(),
		"status":        status,
		"statusSuccess": s.complete(),
		"checksum":      s.headers.ContentChecksum,
		"version":       "1.0",
	}), nil
}

// ListMessages lists the ids of completed messages.
func (m *Mailbox) ListMessages(_ context.Context, token string) (*broker.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.authorized(token) {
		return Status(http.StatusForbidden), nil
	}
	return JSON(http.StatusOK, map[string][]string{"messages": append([]string{}, m.inbox...)}), nil
}
