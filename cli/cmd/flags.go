// Package cmd provides CLI commands for the mesh binary.
package cmd

import "github.com/urfave/cli/v2"

// Output flags shared by every command.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// Connection flags for commands that talk to the mailbox. Each falls back to
// mesh.yaml when unset.
var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to mesh.yaml (optional)",
		EnvVars: []string{"MESH_CONFIG"},
	}

	BaseURLFlag = &cli.StringFlag{
		Name:    "base-url",
		Usage:   "Mailbox API root URL",
		EnvVars: []string{"MESH_BASE_URL"},
	}

	MailboxFlag = &cli.StringFlag{
		Name:    "mailbox",
		Usage:   "Local mailbox id",
		EnvVars: []string{"MESH_MAILBOX"},
	}

	TokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "Authorization token",
		EnvVars: []string{"MESH_TOKEN"},
	}

	TimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Per-request timeout (default 60s)",
	}

	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level: debug, info, warn, error",
		EnvVars: []string{"MESH_LOG_LEVEL"},
	}
)

// Archive flags.
var (
	ArchiveBackendFlag = &cli.StringFlag{
		Name:  "archive-backend",
		Usage: "Archive backend: fs or s3 (empty disables archiving)",
	}

	ArchivePathFlag = &cli.StringFlag{
		Name:  "archive-path",
		Usage: "Archive path (fs: directory, s3: bucket/prefix)",
	}
)

// OutputFlags returns the shared output flags.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// ClientFlags returns output, connection, and archive flags for commands
// that talk to the mailbox.
func ClientFlags(extra ...cli.Flag) []cli.Flag {
	flags := append(OutputFlags(),
		ConfigFlag,
		BaseURLFlag,
		MailboxFlag,
		TokenFlag,
		TimeoutFlag,
		LogLevelFlag,
		ArchiveBackendFlag,
		ArchivePathFlag,
	)
	return append(flags, extra...)
}
