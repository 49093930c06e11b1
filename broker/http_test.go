package broker

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/types"
)

func newTestBroker(t *testing.T, handler http.HandlerFunc) *HTTPBroker {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	b, err := NewHTTPBroker(Config{BaseURL: ts.URL + "/", Mailbox: "MBX001", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPBroker: %v", err)
	}
	t.Cleanup(iox.CloseFunc(b))
	return b
}

func TestNewHTTPBroker_RequiresFields(t *testing.T) {
	if _, err := NewHTTPBroker(Config{Mailbox: "x"}); err == nil {
		t.Error("expected error for empty BaseURL")
	}
	if _, err := NewHTTPBroker(Config{BaseURL: "http://localhost"}); err == nil {
		t.Error("expected error for empty Mailbox")
	}
}

func TestSendMessage_HeadersAndBody(t *testing.T) {
	var gotPath, gotMethod string
	var gotHeader http.Header
	var gotBody []byte

	b := newTestBroker(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod, gotHeader = r.URL.Path, r.Method, r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"messageID":"20260101-abc"}`))
	})

	headers := OutboundHeaders{
		From:        "MBX001",
		To:          "MBX002",
		WorkflowID:  "WF_1",
		ChunkRange:  "{1:2}",
		Subject:     "hello",
		ContentType: "text/plain",
	}
	resp, err := b.SendMessage(t.Context(), "token-1", headers, []byte("payload"))
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/messageexchange/MBX001/outbox" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if string(gotBody) != "payload" {
		t.Errorf("body = %q", gotBody)
	}
	checks := map[string]string{
		types.HeaderAuthorization: "token-1",
		types.HeaderFrom:          "MBX001",
		types.HeaderTo:            "MBX002",
		types.HeaderWorkflowID:    "WF_1",
		types.HeaderChunkRange:    "{1:2}",
		types.HeaderSubject:       "hello",
		types.HeaderContentType:   "text/plain",
		types.HeaderClientVersion: types.ClientVersion(),
	}
	for k, want := range checks {
		if got := gotHeader.Get(k); got != want {
			t.Errorf("header %s = %q, want %q", k, got, want)
		}
	}
	if gotHeader.Get(types.HeaderLocalID) != "" {
		t.Error("empty header values must not be sent")
	}

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("response headers not copied: %v", resp.Header.Keys())
	}
	if !strings.Contains(string(resp.Body), "20260101-abc") {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestSendMessage_DefaultsContentType(t *testing.T) {
	var contentType string
	b := newTestBroker(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	})

	if _, err := b.SendMessage(t.Context(), "t", OutboundHeaders{}, []byte("x")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if contentType != "application/octet-stream" {
		t.Errorf("Content-Type = %q", contentType)
	}
}

func TestPaths(t *testing.T) {
	var paths []string
	b := newTestBroker(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	ctx := t.Context()

	if _, err := b.SendChunk(ctx, "t", OutboundHeaders{}, []byte("x"), "msg-1", 3); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetMessage(ctx, "msg-1", "t"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetChunk(ctx, "msg-1", 2, "t"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.TrackMessage(ctx, "msg-1", "t"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.ListMessages(ctx, "t"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"POST /messageexchange/MBX001/outbox/msg-1/3",
		"GET /messageexchange/MBX001/inbox/msg-1",
		"GET /messageexchange/MBX001/inbox/msg-1/2",
		"GET /messageexchange/MBX001/outbox/tracking/msg-1",
		"GET /messageexchange/MBX001/inbox",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestNonSuccessStatusIsNotAnError(t *testing.T) {
	b := newTestBroker(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	resp, err := b.GetMessage(t.Context(), "missing", "t")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMultiValueHeadersPreserveOrder(t *testing.T) {
	b := newTestBroker(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Mex-Chunk-Range", "{1:3}")
		w.Header().Add("X-Multi", "first")
		w.Header().Add("X-Multi", "second")
		w.WriteHeader(http.StatusPartialContent)
	})

	resp, err := b.GetMessage(t.Context(), "m", "t")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got := resp.Header.Values("X-Multi"); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("X-Multi = %v", got)
	}
	if resp.Header.Get(types.HeaderChunkRange) != "{1:3}" {
		t.Errorf("chunk range = %q", resp.Header.Get(types.HeaderChunkRange))
	}
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	b, err := NewHTTPBroker(Config{BaseURL: url, Mailbox: "MBX001", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	_, err = b.GetMessage(t.Context(), "m", "t")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if te.Op != "get_message" {
		t.Errorf("Op = %q", te.Op)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("kind = %v, want ErrNetwork", te.Kind)
	}
}

func TestResponseHeadersKeepDeclaredSpelling(t *testing.T) {
	b := newTestBroker(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header()[types.HeaderFileName] = []string{"report.csv"}
		w.Header()[types.HeaderWorkflowID] = []string{"WF_1"}
		w.Header().Set(types.HeaderLocalID, "local-7")
		w.Header().Set(types.HeaderContentChecksum, "sha256:abc")
		w.Header().Set("X-Vendor-Trace", "t-1")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := b.GetMessage(t.Context(), "m", "t")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}

	checks := map[string]string{
		types.HeaderFileName:        "report.csv",
		types.HeaderWorkflowID:      "WF_1",
		types.HeaderLocalID:         "local-7",
		types.HeaderContentChecksum: "sha256:abc",
		"X-Vendor-Trace":            "t-1",
	}
	for k, want := range checks {
		if got := resp.Header.Get(k); got != want {
			t.Errorf("%s = %q, want %q (keys %v)", k, got, want, resp.Header.Keys())
		}
	}
	for _, k := range resp.Header.Keys() {
		if k == "Mex-Filename" || k == "Mex-Workflowid" || k == "Mex-Localid" {
			t.Errorf("canonicalized key %q leaked into headers", k)
		}
	}
}
