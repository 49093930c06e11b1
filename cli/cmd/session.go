package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/adapter"
	"github.com/pithecene-io/mesh/adapter/redis"
	"github.com/pithecene-io/mesh/adapter/webhook"
	"github.com/pithecene-io/mesh/archive"
	"github.com/pithecene-io/mesh/broker"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/cli/config"
	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/log"
	"github.com/pithecene-io/mesh/mesh"
	"github.com/pithecene-io/mesh/metrics"
	"github.com/pithecene-io/mesh/orchestration"
	"github.com/pithecene-io/mesh/processing"
	"github.com/pithecene-io/mesh/types"
)

// defaultConfigPath is loaded when present and --config is not given.
const defaultConfigPath = "mesh.yaml"

// defaultTimeout is used when neither flag nor config sets a timeout.
const defaultTimeout = 60 * time.Second

// newBroker builds the mailbox transport. Tests replace it.
var newBroker = func(cfg broker.Config) (broker.Broker, error) {
	return broker.NewHTTPBroker(cfg)
}

// session is the wired client stack for one command invocation.
type session struct {
	mailbox  string
	maxChunk int
	logger   *log.Logger
	metrics  *metrics.Collector
	broker   broker.Broker
	service  *orchestration.Service
	archive  *archive.Archive // nil when archiving is disabled
	adapter  adapter.Adapter  // nil when notifications are disabled
	now      func() time.Time
}

// loadConfig loads --config, or mesh.yaml from the working directory when it
// exists. No file yields a zero Config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return &config.Config{}, nil
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newSession resolves flags over config and wires broker, the three tiers,
// archive, and adapter.
func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitValidation)
	}

	mailbox := pick(c.String("mailbox"), cfg.Mailbox.ID)
	baseURL := pick(c.String("base-url"), cfg.Mailbox.BaseURL)
	if mailbox == "" || baseURL == "" {
		return nil, cli.Exit("--mailbox and --base-url are required (flag, env, or mesh.yaml)", exitValidation)
	}

	level, err := log.ParseLevel(pick(c.String("log-level"), cfg.Log.Level))
	if err != nil {
		return nil, cli.Exit(err.Error(), exitValidation)
	}
	logger := log.NewLogger(log.Context{Mailbox: mailbox, ClientVersion: types.ClientVersion()}, level)

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = cfg.Mailbox.Timeout.Duration
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	b, err := newBroker(broker.Config{BaseURL: baseURL, Mailbox: mailbox, Timeout: timeout})
	if err != nil {
		return nil, cli.Exit(err.Error(), exitValidation)
	}

	archiveCfg := cfg.Archive
	if backend := c.String("archive-backend"); backend != "" {
		archiveCfg.Backend = backend
	}
	if path := c.String("archive-path"); path != "" {
		archiveCfg.Path = path
	}
	arch, err := buildArchive(c.Context, archiveCfg, mailbox)
	if err != nil {
		closeBroker(b)
		return nil, cli.Exit(fmt.Sprintf("archive: %v", err), exitValidation)
	}

	ad, err := buildAdapter(cfg.Adapter)
	if err != nil {
		closeBroker(b)
		return nil, cli.Exit(fmt.Sprintf("adapter: %v", err), exitValidation)
	}

	maxChunk := cfg.Mailbox.MaxChunkSize
	if c.IsSet("max-chunk-size") {
		maxChunk = c.Int("max-chunk-size")
	}
	if maxChunk <= 0 {
		maxChunk = chunk.DefaultMaxSize
	}

	collector := metrics.NewCollector(mailbox, strings.ToLower(archiveCfg.Backend), strings.ToLower(cfg.Adapter.Type))
	token := pick(c.String("token"), cfg.Mailbox.Token)

	stack := orchestration.NewService(
		processing.NewService(mesh.NewService(b)),
		orchestration.StaticToken(token),
		orchestration.Config{MaxChunkSize: maxChunk, Logger: logger, Metrics: collector},
	)

	return &session{
		mailbox:  mailbox,
		maxChunk: maxChunk,
		logger:   logger,
		metrics:  collector,
		broker:   b,
		service:  stack,
		archive:  arch,
		adapter:  ad,
		now:      time.Now,
	}, nil
}

func buildArchive(ctx context.Context, ac config.ArchiveConfig, mailbox string) (*archive.Archive, error) {
	cfg := archive.Config{Dataset: ac.Dataset, Mailbox: mailbox}
	switch strings.ToLower(ac.Backend) {
	case "":
		return nil, nil
	case config.BackendFS:
		if ac.Path == "" {
			return nil, errors.New("path is required for the fs backend")
		}
		return archive.New(cfg, ac.Path)
	case config.BackendS3:
		bucket, prefix := archive.ParseS3Path(ac.Path)
		return archive.NewS3(ctx, cfg, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       ac.Region,
			Endpoint:     ac.Endpoint,
			UsePathStyle: ac.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (must be fs or s3)", ac.Backend)
	}
}

func buildAdapter(ac config.AdapterConfig) (adapter.Adapter, error) {
	switch strings.ToLower(ac.Type) {
	case "":
		return nil, nil
	case config.AdapterWebhook:
		retries := webhook.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		return webhook.New(webhook.Config{
			URL:     ac.URL,
			Headers: ac.Headers,
			Secret:  ac.Secret,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
		})
	case config.AdapterRedis:
		retries := redis.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		return redis.New(redis.Config{
			URL:          ac.URL,
			Channel:      ac.Channel,
			PerDirection: ac.PerDirection,
			Timeout:      ac.Timeout.Duration,
			Retries:      retries,
		})
	default:
		return nil, fmt.Errorf("unknown type %q (must be webhook or redis)", ac.Type)
	}
}

func closeBroker(b broker.Broker) {
	if closer, ok := b.(io.Closer); ok {
		iox.DiscardClose(closer)
	}
}

// complete archives msg and publishes its transfer event. Neither failure
// fails the transfer; both are logged and counted.
func (s *session) complete(ctx context.Context, dir archive.Direction, msg *types.Message, chunks int) string {
	var archivePath string
	if s.archive != nil {
		rec, err := s.archive.Put(ctx, dir, msg, chunks)
		if err != nil {
			s.metrics.IncArchiveWriteFailure()
			s.logger.Warn("archive write failed", map[string]any{
				"message_id": msg.MessageID,
				"direction":  string(dir),
				"error":      err.Error(),
			})
		} else {
			s.metrics.IncArchiveWriteSuccess()
			archivePath = rec.PayloadPath
		}
	}

	if s.adapter != nil {
		event := adapter.NewTransferCompleted(string(dir), s.mailbox, msg, chunks, s.now())
		event.ArchivePath = archivePath
		if err := s.adapter.Publish(ctx, event); err != nil {
			s.metrics.IncNotifyFailure()
			s.logger.Warn("transfer notification failed", map[string]any{
				"message_id": msg.MessageID,
				"error":      err.Error(),
			})
		} else {
			s.metrics.IncNotifySuccess()
		}
	}
	return archivePath
}

// Close releases every resource the session opened.
func (s *session) Close() error {
	var closers []io.Closer
	if s.adapter != nil {
		closers = append(closers, s.adapter)
	}
	if s.archive != nil {
		closers = append(closers, s.archive)
	}
	if closer, ok := s.broker.(io.Closer); ok {
		closers = append(closers, closer)
	}
	err := iox.Closers(closers...)
	s.logger.Debug("session closed", map[string]any{"metrics": s.metrics.Snapshot()})
	_ = s.logger.Sync()
	return err
}
