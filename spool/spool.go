package spool

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mesh/types"
)

// RecordVersion is the version stamped on every spooled record.
const RecordVersion = 1

// Record is the on-disk form of a spooled message.
// Headers are a list so that key and value order survive the round trip.
type Record struct {
	Version      int                 `msgpack:"v"`
	MessageID    string              `msgpack:"message_id"`
	SpooledAt    string              `msgpack:"spooled_at"`
	Headers      []HeaderField       `msgpack:"headers,omitempty"`
	Content      []byte              `msgpack:"content"`
	TrackingInfo *types.TrackingInfo `msgpack:"tracking_info,omitempty"`
}

// HeaderField is one header name with its values in arrival order.
type HeaderField struct {
	Name   string   `msgpack:"name"`
	Values []string `msgpack:"values"`
}

// Message rebuilds the spooled message.
func (r *Record) Message() *types.Message {
	var h types.Headers
	for _, f := range r.Headers {
		h.Add(f.Name, f.Values...)
	}
	return &types.Message{
		MessageID:    r.MessageID,
		Headers:      h,
		FileContent:  r.Content,
		TrackingInfo: r.TrackingInfo,
	}
}

func newRecord(msg *types.Message, at time.Time) *Record {
	rec := &Record{
		Version:      RecordVersion,
		MessageID:    msg.MessageID,
		SpooledAt:    at.UTC().Format(time.RFC3339Nano),
		Content:      msg.Payload(),
		TrackingInfo: msg.TrackingInfo,
	}
	for _, k := range msg.Headers.Keys() {
		rec.Headers = append(rec.Headers, HeaderField{Name: k, Values: msg.Headers.Values(k)})
	}
	return rec
}

// Writer appends messages to a spool stream.
// Safe for concurrent use; each message is written as one frame.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, now: time.Now}
}

// Write appends msg as one frame.
func (w *Writer) Write(msg *types.Message) error {
	if msg == nil {
		return errors.New("spool: message is nil")
	}
	payload, err := msgpack.Marshal(newRecord(msg, w.now()))
	if err != nil {
		return &FrameError{Kind: FrameErrorDecode, Msg: "failed to encode message", Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return writeFrame(w.w, payload)
}

// Reader reads spooled records in write order.
type Reader struct {
	r io.Reader
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record, or io.EOF when the spool ends cleanly.
// A non-fatal decode error leaves the reader positioned at the next frame.
func (r *Reader) Next() (*Record, error) {
	payload, err := readFrame(r.r)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode spooled message",
			Err:  err,
		}
	}
	return &rec, nil
}

// ReadAll reads every record until EOF. Decode errors are skipped and
// counted; fatal frame errors stop the read and are returned with the
// records read so far.
func ReadAll(r io.Reader) (records []*Record, skipped int, err error) {
	reader := NewReader(r)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, skipped, nil
		}
		if err != nil {
			if IsFatalFrameError(err) {
				return records, skipped, err
			}
			skipped++
			continue
		}
		records = append(records, rec)
	}
}
