package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("MESH_TOKEN", "tok-123")
	path := writeConfig(t, `
mailbox:
  base_url: https://mesh.example.net
  id: MBX001
  token: ${MESH_TOKEN}
  timeout: 45s
  max_chunk_size: 1048576
archive:
  backend: s3
  path: my-bucket/mesh
  dataset: inbox
  region: eu-west-2
  endpoint: http://localhost:9000
  s3_path_style: true
adapter:
  type: webhook
  url: https://hooks.example.net/mesh
  headers:
    Authorization: Bearer abc
  secret: hook-secret
  timeout: 5s
  retries: 2
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mailbox.BaseURL != "https://mesh.example.net" || cfg.Mailbox.ID != "MBX001" || cfg.Mailbox.Token != "tok-123" {
		t.Errorf("mailbox = %+v", cfg.Mailbox)
	}
	if cfg.Mailbox.Timeout.Duration != 45*time.Second || cfg.Mailbox.MaxChunkSize != 1<<20 {
		t.Errorf("mailbox limits = %+v", cfg.Mailbox)
	}
	want := ArchiveConfig{Backend: "s3", Path: "my-bucket/mesh", Dataset: "inbox", Region: "eu-west-2", Endpoint: "http://localhost:9000", S3PathStyle: true}
	if cfg.Archive != want {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if cfg.Adapter.Type != AdapterWebhook || cfg.Adapter.Headers["Authorization"] != "Bearer abc" || cfg.Adapter.Secret != "hook-secret" || cfg.Adapter.Timeout.Duration != 5*time.Second {
		t.Errorf("adapter = %+v", cfg.Adapter)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 2 {
		t.Errorf("retries = %v", cfg.Adapter.Retries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestParse_EmptyInputs(t *testing.T) {
	for _, input := range []string{"", "   \n\t\n", "# just a comment\n# another\n"} {
		cfg, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if cfg.Mailbox.ID != "" || cfg.Archive.Backend != "" || cfg.Adapter.Retries != nil {
			t.Errorf("Parse(%q) = %+v, want zero config", input, cfg)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown top-level key", "mailboxes:\n  id: x\n", "mailboxes"},
		{"unknown nested key", "mailbox:\n  bogus: 1\n", "bogus"},
		{"invalid yaml", "mailbox: [unclosed", ""},
		{"bad duration", "mailbox:\n  timeout: soon\n", "invalid duration"},
		{"negative chunk size", "mailbox:\n  max_chunk_size: -1\n", "max_chunk_size"},
		{"unknown backend", "archive:\n  backend: ftp\n", "archive.backend"},
		{"fs without path", "archive:\n  backend: fs\n", "archive.path"},
		{"adapter without url", "adapter:\n  type: redis\n", "adapter.url"},
		{"unknown adapter", "adapter:\n  type: kafka\n  url: x\n", "adapter.type"},
		{"negative retries", "adapter:\n  type: webhook\n  url: x\n  retries: -1\n", "adapter.retries"},
		{"missing required env", "mailbox:\n  token: ${MESH_TEST_UNSET_9876:?token needed}\n", "token needed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_RetriesZeroDistinctFromNil(t *testing.T) {
	cfg, err := Parse([]byte("adapter:\n  type: redis\n  url: redis://localhost:6379\n  retries: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 0 {
		t.Errorf("retries = %v, want explicit 0", cfg.Adapter.Retries)
	}

	cfg, err = Parse([]byte("adapter:\n  type: redis\n  url: redis://localhost:6379\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Adapter.Retries != nil {
		t.Errorf("retries = %v, want nil", *cfg.Adapter.Retries)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v", err)
	}
}
