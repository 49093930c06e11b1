package spool

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mesh/types"
)

func encodeFrame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}

func testMessage(id, body string) *types.Message {
	return &types.Message{
		MessageID: id,
		Headers: types.NewHeaders(
			types.HeaderFrom, "MBX001",
			types.HeaderTo, "MBX002",
			"X-Multi", "first",
			"X-Multi", "second",
		),
		FileContent:  []byte(body),
		TrackingInfo: &types.TrackingInfo{Status: "Accepted", FileName: "report.csv"},
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	for _, id := range []string{"msg-1", "msg-2"} {
		if err := w.Write(testMessage(id, "body of "+id)); err != nil {
			t.Fatalf("Write %s: %v", id, err)
		}
	}

	r := NewReader(&buf)
	for _, id := range []string{"msg-1", "msg-2"} {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rec.Version != RecordVersion || rec.SpooledAt != "2026-01-02T03:04:05Z" {
			t.Errorf("record = %+v", rec)
		}
		msg := rec.Message()
		if msg.MessageID != id || string(msg.FileContent) != "body of "+id {
			t.Errorf("message = %+v", msg)
		}
		if got := msg.Headers.Keys(); len(got) != 3 || got[0] != types.HeaderFrom || got[2] != "X-Multi" {
			t.Errorf("header keys = %v", got)
		}
		if got := msg.Headers.Values("X-Multi"); len(got) != 2 || got[0] != "first" || got[1] != "second" {
			t.Errorf("X-Multi = %v", got)
		}
		if msg.TrackingInfo == nil || msg.TrackingInfo.FileName != "report.csv" {
			t.Errorf("tracking = %+v", msg.TrackingInfo)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestWriter_StringContent(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(&types.Message{MessageID: "m", StringContent: "hello"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(rec.Content) != "hello" {
		t.Errorf("content = %q", rec.Content)
	}
}

func TestWriter_NilMessage(t *testing.T) {
	if err := NewWriter(io.Discard).Write(nil); err == nil {
		t.Error("expected error for nil message")
	}
}

func TestReader_EmptyStream(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(nil)).Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_FrameErrors(t *testing.T) {
	oversized := make([]byte, LengthPrefixSize)
	binary.BigEndian.PutUint32(oversized, MaxPayloadSize+1)

	tests := []struct {
		name      string
		data      []byte
		wantKind  FrameErrorKind
		wantFatal bool
	}{
		{"partial length prefix", []byte{0, 0}, FrameErrorPartial, true},
		{"truncated payload", encodeFrame([]byte("abcdef"))[:7], FrameErrorPartial, true},
		{"oversized", oversized, FrameErrorTooLarge, true},
		{"undecodable payload", encodeFrame([]byte{0xc1}), FrameErrorDecode, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.data)).Next()

			var frameErr *FrameError
			if !errors.As(err, &frameErr) {
				t.Fatalf("expected *FrameError, got %T: %v", err, err)
			}
			if frameErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", frameErr.Kind, tt.wantKind)
			}
			if IsFatalFrameError(err) != tt.wantFatal {
				t.Errorf("IsFatalFrameError = %v, want %v", !tt.wantFatal, tt.wantFatal)
			}
		})
	}
}

func TestReadAll_SkipsDecodeErrors(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(testMessage("msg-1", "a")); err != nil {
		t.Fatal(err)
	}
	buf.Write(encodeFrame([]byte{0xc1}))
	if err := w.Write(testMessage("msg-2", "b")); err != nil {
		t.Fatal(err)
	}

	records, skipped, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 || skipped != 1 {
		t.Errorf("records = %d, skipped = %d", len(records), skipped)
	}
}

func TestReadAll_StopsOnFatal(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(testMessage("msg-1", "a")); err != nil {
		t.Fatal(err)
	}
	payload, err := msgpack.Marshal(&Record{MessageID: "msg-2"})
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(encodeFrame(payload)[:LengthPrefixSize+1])

	records, _, err := ReadAll(&buf)
	if !IsFatalFrameError(err) {
		t.Fatalf("expected fatal frame error, got %v", err)
	}
	if len(records) != 1 || records[0].MessageID != "msg-1" {
		t.Errorf("records = %+v", records)
	}
}

func TestWriteFrame_TooLarge(t *testing.T) {
	err := writeFrame(io.Discard, make([]byte, MaxPayloadSize+1))
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || frameErr.Kind != FrameErrorTooLarge {
		t.Errorf("expected FrameErrorTooLarge, got %v", err)
	}
}
