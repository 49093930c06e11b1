package broker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/types"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 60 * time.Second

// Config configures the HTTP broker.
type Config struct {
	// BaseURL is the mailbox API root, e.g. "https://mesh.example.net" (required).
	BaseURL string
	// Mailbox is the local mailbox id used in request paths (required).
	Mailbox string
	// HTTPClient is used for all requests. If nil, one is built with Timeout.
	HTTPClient *http.Client
	// Timeout is the per-request timeout (default 60s). Ignored when HTTPClient is set.
	Timeout time.Duration
	// ClientVersion is sent as Mex-ClientVersion (default types.ClientVersion()).
	ClientVersion string
}

// HTTPBroker implements Broker over the mailbox REST API.
type HTTPBroker struct {
	baseURL       string
	mailbox       string
	client        *http.Client
	clientVersion string
}

// NewHTTPBroker creates an HTTP broker from cfg.
// Returns an error if BaseURL or Mailbox is empty or BaseURL is malformed.
func NewHTTPBroker(cfg Config) (*HTTPBroker, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("broker: BaseURL is required")
	}
	if cfg.Mailbox == "" {
		return nil, errors.New("broker: Mailbox is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("broker: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	clientVersion := cfg.ClientVersion
	if clientVersion == "" {
		clientVersion = types.ClientVersion()
	}

	return &HTTPBroker{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		mailbox:       cfg.Mailbox,
		client:        client,
		clientVersion: clientVersion,
	}, nil
}

// SendMessage uploads the first chunk to the outbox.
func (b *HTTPBroker) SendMessage(ctx context.Context, token string, headers OutboundHeaders, body []byte) (*Response, error) {
	return b.do(ctx, "send_message", http.MethodPost, b.path("outbox"), token, headers.pairs(), body)
}

// SendChunk uploads a continuation chunk of an existing outbox message.
func (b *HTTPBroker) SendChunk(ctx context.Context, token string, headers OutboundHeaders, body []byte, messageID string, chunkNumber int) (*Response, error) {
	path := b.path("outbox", messageID, strconv.Itoa(chunkNumber))
	return b.do(ctx, "send_chunk", http.MethodPost, path, token, headers.pairs(), body)
}

// GetMessage downloads the first chunk of an inbox message.
func (b *HTTPBroker) GetMessage(ctx context.Context, messageID, token string) (*Response, error) {
	return b.do(ctx, "get_message", http.MethodGet, b.path("inbox", messageID), token, nil, nil)
}

// GetChunk downloads a continuation chunk of an inbox message.
func (b *HTTPBroker) GetChunk(ctx context.Context, messageID string, chunkNumber int, token string) (*Response, error) {
	path := b.path("inbox", messageID, strconv.Itoa(chunkNumber))
	return b.do(ctx, "get_chunk", http.MethodGet, path, token, nil, nil)
}

// TrackMessage fetches the tracking record of an outbox message.
func (b *HTTPBroker) TrackMessage(ctx context.Context, messageID, token string) (*Response, error) {
	return b.do(ctx, "track_message", http.MethodGet, b.path("outbox", "tracking", messageID), token, nil, nil)
}

// ListMessages lists inbox message ids.
func (b *HTTPBroker) ListMessages(ctx context.Context, token string) (*Response, error) {
	return b.do(ctx, "list_messages", http.MethodGet, b.path("inbox"), token, nil, nil)
}

// Close releases idle connections.
func (b *HTTPBroker) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// path builds "/messageexchange/{mailbox}/seg1/seg2...", escaping each segment.
func (b *HTTPBroker) path(segments ...string) string {
	var sb strings.Builder
	sb.WriteString("/messageexchange/")
	sb.WriteString(url.PathEscape(b.mailbox))
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

// do performs one request and returns the response envelope for any status.
func (b *HTTPBroker) do(ctx context.Context, op, method, path, token string, headers [][2]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}

	req.Header.Set(types.HeaderAuthorization, token)
	req.Header.Set(types.HeaderClientVersion, b.clientVersion)
	req.Header.Set(types.HeaderOSName, runtime.GOOS)
	req.Header.Set(types.HeaderOSArchitecture, runtime.GOARCH)
	for _, h := range headers {
		req.Header.Set(h[0], h[1])
	}
	if method == http.MethodPost && req.Header.Get(types.HeaderContentType) == "" {
		req.Header.Set(types.HeaderContentType, "application/octet-stream")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, NewTransportError(op, err)
	}
	defer iox.DiscardClose(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(op, fmt.Errorf("read body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     headersFromHTTP(resp.Header),
		Body:       respBody,
	}, nil
}

// declaredSpelling maps the canonical form net/http gives a header name back
// to the spelling declared in types.
var declaredSpelling = func() map[string]string {
	m := make(map[string]string, len(types.DeclaredHeaders))
	for _, name := range types.DeclaredHeaders {
		m[http.CanonicalHeaderKey(name)] = name
	}
	return m
}()

// headersFromHTTP converts http.Header with keys in sorted order, values in
// arrival order. Declared mailbox headers get their declared spelling back;
// other keys are kept as received.
func headersFromHTTP(h http.Header) types.Headers {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out types.Headers
	for _, k := range keys {
		name := k
		if declared, ok := declaredSpelling[http.CanonicalHeaderKey(k)]; ok {
			name = declared
		}
		out.Add(name, h[k]...)
	}
	return out
}

// Verify HTTPBroker implements Broker.
var _ Broker = (*HTTPBroker)(nil)
