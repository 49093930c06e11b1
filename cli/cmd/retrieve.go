package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/archive"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/spool"
	"github.com/pithecene-io/mesh/types"
)

// RetrieveResult is one row of the retrieve command response.
type RetrieveResult struct {
	MessageID   string `json:"message_id"`
	Sender      string `json:"sender,omitempty"`
	WorkflowID  string `json:"workflow_id,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	Chunks      int    `json:"chunks"`
	Bytes       int    `json:"bytes" table:"bytes"`
	Path        string `json:"path,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"`
	SpoolError  string `json:"spool_error,omitempty"`
}

// RetrieveCommand returns the retrieve command.
func RetrieveCommand() *cli.Command {
	return &cli.Command{
		Name:      "retrieve",
		Usage:     "Download messages, reassembling chunked ones",
		ArgsUsage: "[message-id...]",
		Flags: ClientFlags(
			&cli.BoolFlag{Name: "all", Usage: "Retrieve every message in the inbox"},
			&cli.StringFlag{Name: "out", Usage: "Directory to write payloads to (one file per message id)"},
			&cli.StringFlag{Name: "spool", Usage: "Append retrieved messages to this spool file"},
		),
		Action: retrieveAction,
	}
}

func retrieveAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	ids := c.Args().Slice()
	if len(ids) == 0 && !c.Bool("all") {
		return cli.Exit("retrieve requires message ids or --all", exitValidation)
	}
	outDir := c.String("out")
	for _, id := range ids {
		if outDir != "" && !safeFileName(id) {
			return cli.Exit(fmt.Sprintf("message id %q cannot be used as a file name", id), exitValidation)
		}
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(s)

	if c.Bool("all") {
		inbox, err := s.service.RetrieveMessages(c.Context)
		if err != nil {
			return failure(c, err)
		}
		ids = append(ids, inbox...)
	}

	var writer *spool.Writer
	if path := c.String("spool"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open spool: %v", err), exitUnexpected)
		}
		defer iox.DiscardClose(f)
		writer = spool.NewWriter(f)
	}

	results := make([]RetrieveResult, 0, len(ids))
	for _, id := range ids {
		msg, err := s.service.RetrieveMessage(c.Context, id)
		if err != nil {
			return failure(c, err)
		}

		res, err := s.deliver(c, msg, outDir, writer)
		if err != nil {
			return cli.Exit(err.Error(), exitUnexpected)
		}
		results = append(results, res)
	}
	return r.Render(results)
}

// deliver writes a retrieved message to its local destinations, then
// archives and announces it. A message the spool refuses is reported on its
// result row and the batch continues; the spool stream stays intact because
// oversized frames are rejected before any byte is written.
func (s *session) deliver(c *cli.Context, msg *types.Message, outDir string, writer *spool.Writer) (RetrieveResult, error) {
	chunks := max(1, chunk.ParseLenient(msg.Header(types.HeaderChunkRange)).Total)
	res := RetrieveResult{
		MessageID:  msg.MessageID,
		Sender:     msg.Header(types.HeaderFrom),
		WorkflowID: msg.Header(types.HeaderWorkflowID),
		FileName:   msg.Header(types.HeaderFileName),
		Chunks:     chunks,
		Bytes:      len(msg.FileContent),
	}

	if outDir != "" {
		if !safeFileName(msg.MessageID) {
			return res, fmt.Errorf("message id %q cannot be used as a file name", msg.MessageID)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return res, fmt.Errorf("create output directory: %w", err)
		}
		res.Path = filepath.Join(outDir, msg.MessageID)
		if err := os.WriteFile(res.Path, msg.FileContent, 0o644); err != nil {
			return res, fmt.Errorf("write payload: %w", err)
		}
	}

	if writer != nil {
		if err := writer.Write(msg); err != nil {
			s.metrics.IncSpoolWriteFailure()
			s.logger.Warn("spool write failed", map[string]any{
				"message_id": msg.MessageID,
				"bytes":      len(msg.FileContent),
				"error":      err.Error(),
			})
			res.SpoolError = err.Error()
		} else {
			s.metrics.IncSpoolWriteSuccess()
		}
	}

	res.ArchivePath = s.complete(c.Context, archive.Inbound, msg, chunks)
	return res, nil
}

// safeFileName reports whether id names a single path element.
func safeFileName(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
