package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/spool"
	"github.com/pithecene-io/mesh/types"
)

// SpoolEntry is one row of the spool inspect response.
type SpoolEntry struct {
	MessageID string `json:"message_id"`
	SpooledAt string `json:"spooled_at"`
	Sender    string `json:"sender,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	Bytes     int    `json:"bytes" table:"bytes"`
}

// SpoolCommand returns the spool command group.
func SpoolCommand() *cli.Command {
	return &cli.Command{
		Name:  "spool",
		Usage: "Work with local spool files written by retrieve --spool",
		Subcommands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "List the messages in a spool file",
				ArgsUsage: "<path>",
				Flags:     OutputFlags(),
				Action:    spoolInspectAction,
			},
		},
	}
}

func spoolInspectAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return cli.Exit("spool inspect requires a path", exitValidation)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("open spool: %v", err), exitUnexpected)
	}
	defer iox.DiscardClose(f)

	records, skipped, readErr := spool.ReadAll(f)

	entries := make([]SpoolEntry, 0, len(records))
	for _, rec := range records {
		msg := rec.Message()
		entries = append(entries, SpoolEntry{
			MessageID: rec.MessageID,
			SpooledAt: rec.SpooledAt,
			Sender:    msg.Header(types.HeaderFrom),
			FileName:  msg.Header(types.HeaderFileName),
			Bytes:     len(rec.Content),
		})
	}
	if err := r.Render(entries); err != nil {
		return err
	}

	if skipped > 0 {
		fmt.Fprintf(c.App.ErrWriter, "Warning: skipped %d undecodable frame(s)\n", skipped)
	}
	if readErr != nil {
		return cli.Exit(fmt.Sprintf("spool is truncated or corrupt after %d message(s): %v", len(records), readErr), exitUnexpected)
	}
	return nil
}
