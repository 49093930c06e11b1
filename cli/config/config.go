package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config represents a mesh.yaml configuration file.
// All values act as defaults for mesh command flags. Flags always win.
type Config struct {
	Mailbox MailboxConfig `yaml:"mailbox"`
	Archive ArchiveConfig `yaml:"archive"`
	Adapter AdapterConfig `yaml:"adapter"`
	Log     LogConfig     `yaml:"log"`
}

// MailboxConfig identifies the local mailbox and the remote service.
type MailboxConfig struct {
	BaseURL      string   `yaml:"base_url"`
	ID           string   `yaml:"id"`
	Token        string   `yaml:"token"`
	Timeout      Duration `yaml:"timeout,omitempty"`
	MaxChunkSize int      `yaml:"max_chunk_size,omitempty"`
}

// ArchiveConfig holds archive storage settings. An empty Backend disables
// archiving.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Dataset     string `yaml:"dataset"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter settings. An empty Type disables
// notifications.
type AdapterConfig struct {
	Type         string            `yaml:"type"`
	URL          string            `yaml:"url"`
	Channel      string            `yaml:"channel,omitempty"`
	PerDirection bool              `yaml:"per_direction,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Secret       string            `yaml:"secret,omitempty"`
	Timeout      Duration          `yaml:"timeout,omitempty"`
	Retries      *int              `yaml:"retries,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Archive backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Adapter types.
const (
	AdapterWebhook = "webhook"
	AdapterRedis   = "redis"
)

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks the values that cannot be defaulted. Missing mailbox
// settings are left to the command, since flags may still supply them.
func (c *Config) Validate() error {
	var errs []error

	if c.Mailbox.MaxChunkSize < 0 {
		errs = append(errs, fmt.Errorf("mailbox.max_chunk_size must be >= 0, got %d", c.Mailbox.MaxChunkSize))
	}

	switch strings.ToLower(c.Archive.Backend) {
	case "":
	case BackendFS:
		if c.Archive.Path == "" {
			errs = append(errs, errors.New("archive.path is required for the fs backend"))
		}
	case BackendS3:
		if c.Archive.Path == "" {
			errs = append(errs, errors.New("archive.path (bucket[/prefix]) is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive.backend must be %q or %q, got %q", BackendFS, BackendS3, c.Archive.Backend))
	}

	switch strings.ToLower(c.Adapter.Type) {
	case "":
	case AdapterWebhook, AdapterRedis:
		if c.Adapter.URL == "" {
			errs = append(errs, fmt.Errorf("adapter.url is required for the %s adapter", c.Adapter.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("adapter.type must be %q or %q, got %q", AdapterWebhook, AdapterRedis, c.Adapter.Type))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries))
	}

	return errors.Join(errs...)
}
