package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/types"
)

// NewApp returns the mesh CLI application. Callers set ExitErrHandler.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "mesh",
		Usage:   "Mailbox client: send, retrieve, and track messages",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Commands: []*cli.Command{
			SendCommand(),
			RetrieveCommand(),
			TrackCommand(),
			InboxCommand(),
			SpoolCommand(),
			ArchiveCommand(),
			VersionCommand(commit),
		},
	}
}
