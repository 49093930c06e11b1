package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/mesh/fault"
)

// Color palette for diagnostics.
var (
	errorColor = lipgloss.Color("#EF4444") // Red
	warnColor  = lipgloss.Color("#F59E0B") // Amber
	mutedColor = lipgloss.Color("#6B7280") // Gray
	keyColor   = lipgloss.Color("#3B82F6") // Blue
)

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	tierStyle     = lipgloss.NewStyle().Foreground(warnColor)
	paramStyle    = lipgloss.NewStyle().Bold(true).Foreground(keyColor)
	causeStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)
)

// Diagnostic is the structured form of a failed operation.
type Diagnostic struct {
	Tier       string              `json:"tier,omitempty"`
	Kind       string              `json:"kind,omitempty"`
	Layers     []string            `json:"layers,omitempty"`
	Violations map[string][]string `json:"violations,omitempty"`
	Cause      string              `json:"cause"`
}

// Diagnose walks err's chain. Layers lists every tier/kind pair, outermost
// first. Cause is the innermost non-fault error.
func Diagnose(err error) Diagnostic {
	var d Diagnostic
	if tier, kind, ok := fault.KindOf(err); ok {
		d.Tier = string(tier)
		d.Kind = kind.String()
	}
	if v := fault.ViolationsOf(err); len(v) > 0 {
		d.Violations = v
	}

	cause := err
	for e := err; e != nil; e = errors.Unwrap(e) {
		if fe, ok := e.(*fault.Error); ok {
			d.Layers = append(d.Layers, fmt.Sprintf("%s/%s", fe.Tier, fe.Kind))
			continue
		}
		cause = e
		if _, ok := e.(*fault.FailedServiceError); ok {
			continue
		}
		break
	}
	if cause != nil {
		d.Cause = cause.Error()
	}
	return d
}

// RenderError writes a diagnostic for err to w. JSON and YAML formats emit
// the Diagnostic; table format emits a styled box unless color is disabled.
func (r *Renderer) RenderError(w io.Writer, err error) error {
	d := Diagnose(err)
	switch r.format {
	case FormatJSON, FormatYAML:
		out := &Renderer{format: r.format, out: w}
		return out.Render(map[string]Diagnostic{"error": d})
	}
	_, werr := fmt.Fprintln(w, formatDiagnostic(d, r.noColor))
	return werr
}

func formatDiagnostic(d Diagnostic, noColor bool) string {
	style := func(s lipgloss.Style, text string) string {
		if noColor {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	headline := "error"
	if d.Kind != "" {
		headline = d.Kind + " error"
	}
	b.WriteString(style(headlineStyle, headline))
	if d.Tier != "" {
		b.WriteString(" " + style(tierStyle, "("+d.Tier+")"))
	}

	for _, key := range fault.Data(d.Violations).Keys() {
		fmt.Fprintf(&b, "\n  %s: %s", style(paramStyle, key), strings.Join(d.Violations[key], ", "))
	}
	if len(d.Layers) > 1 {
		fmt.Fprintf(&b, "\n  %s", style(causeStyle, "via "+strings.Join(d.Layers, " > ")))
	}
	if d.Cause != "" {
		fmt.Fprintf(&b, "\n  %s", style(causeStyle, "cause: "+d.Cause))
	}

	if noColor {
		return b.String()
	}
	return boxStyle.Render(b.String())
}
