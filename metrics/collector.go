// Package metrics provides per-process transfer metrics.
//
// The Collector accumulates counters across the operations of one client
// process. It is a leaf package with no internal dependencies; failure kinds
// are recorded by name so callers need not share the fault types.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Operations
	MessagesSent      int64
	MessagesRetrieved int64
	MessagesTracked   int64
	InboxListings     int64

	// Transfer volume
	ChunksSent      int64
	ChunksRetrieved int64
	BytesSent       int64
	BytesRetrieved  int64

	// Failures, keyed by fault kind name ("validation", "dependency", ...)
	Failures       int64
	FailuresByKind map[string]int64

	// Archive / notifications
	ArchiveWriteSuccess int64
	ArchiveWriteFailure int64
	NotifySuccess       int64
	NotifyFailure       int64
	SpoolWriteSuccess   int64
	SpoolWriteFailure   int64

	// Dimensions (informational, set at construction)
	Mailbox        string
	StorageBackend string
	Adapter        string
}

// Collector accumulates transfer metrics.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	messagesSent      int64
	messagesRetrieved int64
	messagesTracked   int64
	inboxListings     int64

	chunksSent      int64
	chunksRetrieved int64
	bytesSent       int64
	bytesRetrieved  int64

	failures       int64
	failuresByKind map[string]int64

	archiveWriteSuccess int64
	archiveWriteFailure int64
	notifySuccess       int64
	notifyFailure       int64
	spoolWriteSuccess   int64
	spoolWriteFailure   int64

	mailbox        string
	storageBackend string
	adapter        string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend and adapter may be empty when not configured.
func NewCollector(mailbox, storageBackend, adapter string) *Collector {
	return &Collector{
		failuresByKind: make(map[string]int64),
		mailbox:        mailbox,
		storageBackend: storageBackend,
		adapter:        adapter,
	}
}

// --- Operations ---

// RecordSent records a completed send of chunks chunks totalling bytes bytes.
func (c *Collector) RecordSent(chunks int, bytes int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.messagesSent++
	c.chunksSent += int64(chunks)
	c.bytesSent += bytes
	c.mu.Unlock()
}

// RecordRetrieved records a completed retrieval.
func (c *Collector) RecordRetrieved(chunks int, bytes int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.messagesRetrieved++
	c.chunksRetrieved += int64(chunks)
	c.bytesRetrieved += bytes
	c.mu.Unlock()
}

// IncTracked records a completed tracking call.
func (c *Collector) IncTracked() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.messagesTracked++
	c.mu.Unlock()
}

// IncInboxListing records a completed inbox listing.
func (c *Collector) IncInboxListing() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.inboxListings++
	c.mu.Unlock()
}

// IncFailure records a failed operation of the given kind.
func (c *Collector) IncFailure(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.failures++
	c.failuresByKind[kind]++
	c.mu.Unlock()
}

// --- Archive / notifications ---
// Archive counters are per-message, not per-record: a message whose metadata
// and payload are both written counts as one success.

// IncArchiveWriteSuccess records a successful archive write.
func (c *Collector) IncArchiveWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.archiveWriteSuccess++
	c.mu.Unlock()
}

// IncArchiveWriteFailure records a failed archive write.
func (c *Collector) IncArchiveWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.archiveWriteFailure++
	c.mu.Unlock()
}

// IncNotifySuccess records a delivered notification.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifySuccess++
	c.mu.Unlock()
}

// IncNotifyFailure records a notification that exhausted its retries.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailure++
	c.mu.Unlock()
}

// IncSpoolWriteSuccess records a message appended to the spool.
func (c *Collector) IncSpoolWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.spoolWriteSuccess++
	c.mu.Unlock()
}

// IncSpoolWriteFailure records a message the spool refused.
func (c *Collector) IncSpoolWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.spoolWriteFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byKind := make(map[string]int64, len(c.failuresByKind))
	for k, v := range c.failuresByKind {
		byKind[k] = v
	}

	return Snapshot{
		MessagesSent:      c.messagesSent,
		MessagesRetrieved: c.messagesRetrieved,
		MessagesTracked:   c.messagesTracked,
		InboxListings:     c.inboxListings,

		ChunksSent:      c.chunksSent,
		ChunksRetrieved: c.chunksRetrieved,
		BytesSent:       c.bytesSent,
		BytesRetrieved:  c.bytesRetrieved,

		Failures:       c.failures,
		FailuresByKind: byKind,

		ArchiveWriteSuccess: c.archiveWriteSuccess,
		ArchiveWriteFailure: c.archiveWriteFailure,
		NotifySuccess:       c.notifySuccess,
		NotifyFailure:       c.notifyFailure,
		SpoolWriteSuccess:   c.spoolWriteSuccess,
		SpoolWriteFailure:   c.spoolWriteFailure,

		Mailbox:        c.mailbox,
		StorageBackend: c.storageBackend,
		Adapter:        c.adapter,
	}
}
