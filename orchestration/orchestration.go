// Package orchestration is the outermost tier of the mailbox client.
//
// It acquires the authorization token, splits large payloads into chunks,
// drives the chunk sequence through the processing tier, and tracks the
// result. Errors from the processing tier are re-wrapped once, so a caller
// sees exactly four kinds: Validation, DependencyValidation, Dependency,
// and Service.
package orchestration

import (
	"context"
	"errors"

	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/log"
	"github.com/pithecene-io/mesh/metrics"
	"github.com/pithecene-io/mesh/types"
)

// Processor is the tier beneath orchestration. *processing.Service implements it.
type Processor interface {
	SendMessage(ctx context.Context, msg *types.Message, token string) (*types.Message, error)
	SendChunk(ctx context.Context, msg *types.Message, token string) (*types.Message, error)
	TrackMessage(ctx context.Context, messageID, token string) (*types.Message, error)
	RetrieveMessage(ctx context.Context, messageID, token string) (*types.Message, error)
	RetrieveMessages(ctx context.Context, token string) ([]string, error)
}

// TokenSource supplies the authorization token for each operation.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Config configures an orchestration Service.
type Config struct {
	// MaxChunkSize is the largest payload sent in one chunk
	// (default chunk.DefaultMaxSize).
	MaxChunkSize int
	// Logger receives one entry per operation outcome. Nil discards.
	Logger *log.Logger
	// Metrics counts operations and failures. Nil disables.
	Metrics *metrics.Collector
}

// Service performs orchestration-tier operations.
type Service struct {
	processor Processor
	tokens    TokenSource
	maxChunk  int
	logger    *log.Logger
	metrics   *metrics.Collector
	fault     fault.Translator
}

// NewService creates an orchestration Service.
func NewService(p Processor, tokens TokenSource, cfg Config) *Service {
	maxChunk := cfg.MaxChunkSize
	if maxChunk <= 0 {
		maxChunk = chunk.DefaultMaxSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		processor: p,
		tokens:    tokens,
		maxChunk:  maxChunk,
		logger:    logger,
		metrics:   cfg.Metrics,
		fault:     fault.For(fault.TierOrchestration),
	}
}

// classify translates err for this tier. Token acquisition and
// cancellation observed here are this tier's own dependency failures.
func (s *Service) classify(err error) error {
	if err == nil {
		return nil
	}
	var fe *fault.Error
	var te *tokenError
	if !errors.As(err, &fe) &&
		(errors.As(err, &te) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return s.fault.Dependency(err)
	}
	return s.fault.Translate(err)
}

// fail classifies err, records it, and logs it.
func (s *Service) fail(op string, err error, fields map[string]any) error {
	err = s.classify(err)

	tier, kind, _ := fault.KindOf(err)
	s.metrics.IncFailure(kind.String())

	if fields == nil {
		fields = map[string]any{}
	}
	fields["op"] = op
	fields["tier"] = string(tier)
	fields["kind"] = kind.String()
	fields["error"] = err.Error()
	if data := fault.ViolationsOf(err); len(data) > 0 {
		fields["violations"] = data.String()
	}
	s.logger.Error("operation failed", fields)
	return err
}

// tokenError reports a TokenSource failure.
type tokenError struct {
	err error
}

func (e *tokenError) Error() string { return "acquire token: " + e.err.Error() }
func (e *tokenError) Unwrap() error { return e.err }

func (s *Service) token(ctx context.Context) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", &tokenError{err: err}
	}
	if err := fault.NewValidator(fault.ReasonInvalidArgs).RequireText("Token", token).Err(); err != nil {
		return "", err
	}
	return token, nil
}
