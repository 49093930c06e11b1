// Package main provides the mesh CLI entrypoint.
//
// Usage:
//
//	mesh <command> [subcommand] [options]
//
// Exit codes:
//   - 0: success
//   - 1: unexpected error
//   - 2: validation (caller input rejected)
//   - 3: dependency validation (a lower tier rejected the input)
//   - 4: dependency (mailbox unreachable or returned an error)
//   - 5: service (unanticipated failure)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/cli/cmd"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := cmd.NewApp(commit)
	app.ExitErrHandler = exitErrHandler

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(cmd.ExitCode(err))
	}
}

// exitErrHandler preserves exit codes from cli.Exit and prints their message.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is empty; the diagnostic was already rendered.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cmd.ExitCode(err))
}
