// Package render provides output rendering for the mesh CLI.
//
// Format selection:
//   - If output is a TTY, default to table
//   - If output is not a TTY, default to json
//   - --format flag always overrides defaults
//   - Invalid formats are errors
//
// --no-color affects table output and error diagnostics only.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "yaml":
		return FormatYAML, nil
	case "":
		return "", nil // Let caller decide default
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a renderer from CLI context.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	formatStr := c.String("format")
	format, err := ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	if c.App != nil && c.App.Writer != nil {
		out = c.App.Writer
	}

	// Apply default format based on TTY detection
	if format == "" {
		if f, ok := out.(*os.File); ok && isTTY(f) {
			format = FormatTable
		} else {
			format = FormatJSON
		}
	}

	return &Renderer{
		format:  format,
		noColor: c.Bool("no-color"),
		out:     out,
	}, nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{
		format:  format,
		noColor: noColor,
		out:     out,
	}
}

// Render outputs the data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	case FormatTable:
		return r.renderTable(data)
	case FormatYAML:
		return r.renderYAML(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	return enc.Encode(data)
}

func (r *Renderer) renderTable(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))
	if !v.IsValid() {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			fmt.Fprintln(w, "(no results)")
			return nil
		}
		headers, rows := rowsOf(v)
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	case reflect.Struct:
		for _, col := range columnsOf(v.Type()) {
			fmt.Fprintf(w, "%s:\t%s\n", col.name, col.format(v.FieldByIndex(col.index)))
		}
	case reflect.Map:
		for _, key := range sortedKeys(v) {
			fmt.Fprintf(w, "%v:\t%s\n", key.Interface(), formatValue(v.MapIndex(key)))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}
	return nil
}

// column is one rendered struct field.
//
// Struct tags control columns: the json name is the header, `table:"-"`
// hides the field, and `table:"bytes"` renders an integer as a size.
type column struct {
	name  string
	index []int
	bytes bool
}

func (c column) format(v reflect.Value) string {
	if c.bytes && v.CanInt() {
		return humanBytes(v.Int())
	}
	return formatValue(v)
}

func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opt := f.Tag.Get("table")
		if opt == "-" {
			continue
		}
		name := strings.ToLower(f.Name)
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		cols = append(cols, column{name: name, index: f.Index, bytes: opt == "bytes"})
	}
	return cols
}

// rowsOf lays out a non-empty slice. Struct elements become one column per
// field, map elements one column per key of the first element, and anything
// else a single "value" column.
func rowsOf(v reflect.Value) ([]string, [][]string) {
	first := reflect.Indirect(v.Index(0))
	rows := make([][]string, 0, v.Len())

	switch first.Kind() {
	case reflect.Struct:
		cols := columnsOf(first.Type())
		headers := make([]string, len(cols))
		for i, col := range cols {
			headers[i] = col.name
		}
		for i := 0; i < v.Len(); i++ {
			elem := reflect.Indirect(v.Index(i))
			row := make([]string, len(cols))
			if elem.IsValid() {
				for j, col := range cols {
					row[j] = col.format(elem.FieldByIndex(col.index))
				}
			}
			rows = append(rows, row)
		}
		return headers, rows
	case reflect.Map:
		keys := sortedKeys(first)
		headers := make([]string, len(keys))
		for i, key := range keys {
			headers[i] = fmt.Sprint(key.Interface())
		}
		for i := 0; i < v.Len(); i++ {
			elem := reflect.Indirect(v.Index(i))
			row := make([]string, len(keys))
			for j, key := range keys {
				if elem.IsValid() {
					row[j] = formatValue(elem.MapIndex(key))
				}
			}
			rows = append(rows, row)
		}
		return headers, rows
	default:
		for i := 0; i < v.Len(); i++ {
			rows = append(rows, []string{formatValue(v.Index(i))})
		}
		return []string{"value"}, rows
	}
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			if x.IsZero() {
				return ""
			}
			return x.UTC().Format(time.RFC3339)
		case []string:
			return strings.Join(x, ", ")
		case fmt.Stringer:
			return x.String()
		}
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// humanBytes renders n with a binary unit, e.g. 1536 as "1.5 KiB".
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTP"[exp])
}

// sortedKeys returns map keys ordered by their printed form.
func sortedKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}

// isTTY returns true if the writer is a TTY.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
