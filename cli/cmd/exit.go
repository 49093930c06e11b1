package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/fault"
)

// Exit codes. Operation failures map the outermost fault kind.
const (
	exitSuccess              = 0
	exitUnexpected           = 1
	exitValidation           = 2
	exitDependencyValidation = 3
	exitDependency           = 4
	exitService              = 5
)

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}
	_, kind, ok := fault.KindOf(err)
	if !ok {
		return exitUnexpected
	}
	switch kind {
	case fault.KindValidation:
		return exitValidation
	case fault.KindDependencyValidation:
		return exitDependencyValidation
	case fault.KindDependency:
		return exitDependency
	default:
		return exitService
	}
}

// failure renders a diagnostic for err on the app's error writer and returns
// an exit error carrying the mapped code. The diagnostic replaces the usual
// error message, so the returned error prints nothing.
func failure(c *cli.Context, err error) error {
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	format, ferr := render.ParseFormat(c.String("format"))
	if ferr != nil || format == "" {
		format = render.FormatTable
	}
	noColor := c.Bool("no-color") || !isTerminal(w)
	r := render.NewRendererWithWriter(format, noColor, w)
	_ = r.RenderError(w, err)
	return cli.Exit("", ExitCode(err))
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
