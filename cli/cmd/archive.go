package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/archive"
	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
)

// ArchiveEntry is one row of the archive list response.
type ArchiveEntry struct {
	MessageID  string `json:"message_id"`
	Direction  string `json:"direction"`
	Day        string `json:"day"`
	Peer       string `json:"peer,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	Chunks     int    `json:"chunks"`
	Bytes      int64  `json:"bytes" table:"bytes"`
	Checksum   string `json:"checksum"`
	ArchivedAt string `json:"archived_at"`
}

// ArchiveCommand returns the archive command group.
func ArchiveCommand() *cli.Command {
	archiveFlags := func(extra ...cli.Flag) []cli.Flag {
		return append(append(OutputFlags(), ConfigFlag, MailboxFlag, ArchiveBackendFlag, ArchivePathFlag), extra...)
	}
	return &cli.Command{
		Name:  "archive",
		Usage: "Query archived messages",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List archived messages",
				Flags: archiveFlags(
					&cli.StringFlag{Name: "direction", Usage: "inbound or outbound"},
					&cli.StringFlag{Name: "day", Usage: "Partition day (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "message-id", Usage: "Only this message"},
				),
				Action: archiveListAction,
			},
			{
				Name:      "cat",
				Usage:     "Write an archived payload to stdout",
				ArgsUsage: "<message-id>",
				Flags: archiveFlags(
					&cli.StringFlag{Name: "direction", Usage: "inbound or outbound"},
				),
				Action: archiveCatAction,
			},
		},
	}
}

// openArchive builds the archive from flags over config without touching
// the mailbox.
func openArchive(c *cli.Context) (*archive.Archive, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitValidation)
	}
	mailbox := pick(c.String("mailbox"), cfg.Mailbox.ID)
	if mailbox == "" {
		return nil, cli.Exit("--mailbox is required (flag, env, or mesh.yaml)", exitValidation)
	}

	ac := cfg.Archive
	if backend := c.String("archive-backend"); backend != "" {
		ac.Backend = backend
	}
	if path := c.String("archive-path"); path != "" {
		ac.Path = path
	}
	if ac.Backend == "" {
		return nil, cli.Exit("no archive configured (set --archive-backend or archive.backend)", exitValidation)
	}

	a, err := buildArchive(c.Context, ac, mailbox)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("archive: %v", err), exitValidation)
	}
	return a, nil
}

func parseDirection(s string) (archive.Direction, error) {
	switch d := archive.Direction(strings.ToLower(s)); d {
	case "", archive.Inbound, archive.Outbound:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q (must be inbound or outbound)", s)
	}
}

func archiveListAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	dir, err := parseDirection(c.String("direction"))
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(a)

	records, err := a.Records(c.Context, archive.Filter{
		Direction: dir,
		Day:       c.String("day"),
		MessageID: c.String("message-id"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("read archive: %v", err), exitUnexpected)
	}

	entries := make([]ArchiveEntry, 0, len(records))
	for _, rec := range records {
		peer := rec.Sender
		if rec.Direction == archive.Outbound {
			peer = rec.Recipient
		}
		entries = append(entries, ArchiveEntry{
			MessageID:  rec.MessageID,
			Direction:  string(rec.Direction),
			Day:        rec.Day,
			Peer:       peer,
			FileName:   rec.FileName,
			Chunks:     rec.ChunkCount,
			Bytes:      rec.Bytes,
			Checksum:   rec.Checksum,
			ArchivedAt: rec.ArchivedAt,
		})
	}
	return r.Render(entries)
}

func archiveCatAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("archive cat requires exactly one message id", exitValidation)
	}
	dir, err := parseDirection(c.String("direction"))
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(a)

	records, err := a.Records(c.Context, archive.Filter{Direction: dir, MessageID: c.Args().First()})
	if err != nil {
		return cli.Exit(fmt.Sprintf("read archive: %v", err), exitUnexpected)
	}
	switch len(records) {
	case 0:
		return cli.Exit(fmt.Sprintf("message %q is not archived", c.Args().First()), exitUnexpected)
	case 1:
	default:
		return cli.Exit("message archived in both directions; pass --direction", exitValidation)
	}

	data, err := a.Payload(c.Context, records[0])
	if err != nil {
		return cli.Exit(fmt.Sprintf("read payload: %v", err), exitUnexpected)
	}
	_, err = c.App.Writer.Write(data)
	return err
}
