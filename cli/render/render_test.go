package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("csv"); err == nil || !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error message should mention valid formats, got: %v", err)
	}
}

type messageRow struct {
	MessageID string `json:"message_id"`
	Bytes     int    `json:"bytes"`
	Chunks    int    `json:"chunks"`
	internal  string
}

func TestRenderer_Formats(t *testing.T) {
	data := map[string]string{"message_id": "msg-1"}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`"message_id": "msg-1"`}},
		{FormatYAML, []string{"message_id: msg-1"}},
		{FormatTable, []string{"message_id:", "msg-1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewRendererWithWriter(tt.format, false, &buf).Render(data); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestRenderer_Table_Struct(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	if err := r.Render(&messageRow{MessageID: "msg-1", Bytes: 42, Chunks: 2, internal: "hidden"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{"message_id:", "msg-1", "bytes:", "42", "chunks:"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("unexported field rendered: %q", got)
	}
}

func TestRenderer_Table_Slice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	rows := []messageRow{{MessageID: "first", Bytes: 1}, {MessageID: "second", Bytes: 2}}
	if err := r.Render(rows); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q, want header + 2 rows", lines)
	}
	if !strings.HasPrefix(lines[0], "message_id") || !strings.HasPrefix(lines[1], "first") || !strings.HasPrefix(lines[2], "second") {
		t.Errorf("table = %q", lines)
	}
}

func TestRenderer_Table_MapKeysSorted(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatTable, false, &buf).Render(map[string]int{"b": 2, "a": 1, "c": 3}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "a:") || !strings.HasPrefix(lines[2], "c:") {
		t.Errorf("lines = %q", lines)
	}
}

func TestRenderer_Table_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatTable, false, &buf).Render([]string{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("Empty slice should show '(no results)', got: %s", buf.String())
	}
}

func TestRenderer_NoColor_DoesNotAffectJSON(t *testing.T) {
	var bufColor, bufNoColor bytes.Buffer
	data := map[string]string{"key": "value"}

	if err := NewRendererWithWriter(FormatJSON, false, &bufColor).Render(data); err != nil {
		t.Fatal(err)
	}
	if err := NewRendererWithWriter(FormatJSON, true, &bufNoColor).Render(data); err != nil {
		t.Fatal(err)
	}
	if bufColor.String() != bufNoColor.String() {
		t.Errorf("--no-color should not affect JSON output")
	}
}

type transferRow struct {
	MessageID string    `json:"message_id"`
	Bytes     int64     `json:"bytes" table:"bytes"`
	Layers    []string  `json:"layers"`
	At        time.Time `json:"at"`
	Secret    string    `json:"secret" table:"-"`
	Skipped   string    `json:"-"`
}

func TestRenderer_Table_Tags(t *testing.T) {
	var buf bytes.Buffer
	row := transferRow{
		MessageID: "msg-1",
		Bytes:     3 << 20,
		Layers:    []string{"orchestration/dependency", "processing/dependency"},
		At:        time.Date(2026, 3, 4, 10, 0, 0, 0, time.FixedZone("X", 3600)),
		Secret:    "token",
		Skipped:   "gone",
	}
	if err := NewRendererWithWriter(FormatTable, true, &buf).Render([]transferRow{row}); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	for _, want := range []string{"message_id", "bytes", "3.0 MiB", "orchestration/dependency, processing/dependency", "2026-03-04T09:00:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output %q missing %q", got, want)
		}
	}
	for _, hidden := range []string{"secret", "token", "gone"} {
		if strings.Contains(got, hidden) {
			t.Errorf("table output %q contains hidden %q", got, hidden)
		}
	}
}

func TestRenderer_Table_ScalarSlice(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatTable, true, &buf).Render([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || strings.TrimSpace(lines[0]) != "value" || strings.TrimSpace(lines[2]) != "b" {
		t.Errorf("lines = %q", lines)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{100 << 20, "100.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
