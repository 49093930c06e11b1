package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/archive"
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/types"
)

// SendResult is the response for the send command.
type SendResult struct {
	MessageID   string `json:"message_id"`
	LocalID     string `json:"local_id"`
	Recipient   string `json:"recipient"`
	WorkflowID  string `json:"workflow_id"`
	ContentType string `json:"content_type,omitempty"`
	Chunks      int    `json:"chunks"`
	Bytes       int    `json:"bytes" table:"bytes"`
	Status      string `json:"status,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"`
}

// SendCommand returns the send command.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send a message, splitting large payloads into chunks",
		Flags: ClientFlags(
			&cli.StringFlag{Name: "to", Usage: "Recipient mailbox id", Required: true},
			&cli.StringFlag{Name: "workflow-id", Usage: "Workflow id", Required: true},
			&cli.StringFlag{Name: "file", Usage: `Payload file ("-" reads stdin)`},
			&cli.StringFlag{Name: "text", Usage: "Payload text (ignored when --file is set)"},
			&cli.StringFlag{Name: "subject", Usage: "Message subject"},
			&cli.StringFlag{Name: "local-id", Usage: "Local reference (default: random UUID)"},
			&cli.StringFlag{Name: "file-name", Usage: "File name sent in Mex-FileName (default: base name of --file)"},
			&cli.StringFlag{Name: "content-type", Usage: "Content-Type of the payload (default: detected from file content)"},
			&cli.StringFlag{Name: "content-encoding", Usage: "Content-Encoding of the payload"},
			&cli.StringFlag{Name: "checksum", Usage: "Content checksum sent in Mex-Content-Checksum"},
			&cli.IntFlag{Name: "max-chunk-size", Usage: "Largest chunk in bytes (default 100 MiB)"},
		},
		Action: sendAction,
	}
}

func sendAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	msg, err := buildOutbound(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(s)
	msg.Headers.Set(types.HeaderFrom, s.mailbox)

	sent, err := s.service.SendMessage(c.Context, msg)
	if err != nil {
		return failure(c, err)
	}

	chunks := len(chunk.Split(msg.Payload(), s.maxChunk))
	archived := outboundRecord(msg, sent)
	archivePath := s.complete(c.Context, archive.Outbound, archived, chunks)

	result := SendResult{
		MessageID:   sent.MessageID,
		LocalID:     msg.Header(types.HeaderLocalID),
		Recipient:   msg.Header(types.HeaderTo),
		WorkflowID:  msg.Header(types.HeaderWorkflowID),
		ContentType: msg.Header(types.HeaderContentType),
		Chunks:      chunks,
		Bytes:       len(msg.Payload()),
		ArchivePath: archivePath,
	}
	if sent.TrackingInfo != nil {
		result.Status = sent.TrackingInfo.Status
	}
	return r.Render(result)
}

// buildOutbound assembles the outbound message from flags. Mex-From is
// stamped later with the resolved local mailbox.
func buildOutbound(c *cli.Context) (*types.Message, error) {
	msg := &types.Message{}

	fileName := c.String("file-name")
	switch path := c.String("file"); path {
	case "":
		msg.StringContent = c.String("text")
	case "-":
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		msg.FileContent = data
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		msg.FileContent = data
		if fileName == "" {
			fileName = filepath.Base(path)
		}
	}

	contentType := c.String("content-type")
	if contentType == "" && len(msg.FileContent) > 0 {
		contentType = mimetype.Detect(msg.FileContent).String()
	}

	localID := c.String("local-id")
	if localID == "" {
		localID = uuid.NewString()
	}

	set := func(key, value string) {
		if value != "" {
			msg.Headers.Set(key, value)
		}
	}
	set(types.HeaderTo, c.String("to"))
	set(types.HeaderWorkflowID, c.String("workflow-id"))
	set(types.HeaderSubject, c.String("subject"))
	set(types.HeaderLocalID, localID)
	set(types.HeaderFileName, fileName)
	set(types.HeaderContentType, contentType)
	set(types.HeaderContentEncoding, c.String("content-encoding"))
	set(types.HeaderContentChecksum, c.String("checksum"))
	return msg, nil
}

// outboundRecord combines what was sent with what came back: input headers
// first, then response headers not already present.
func outboundRecord(in, sent *types.Message) *types.Message {
	h := in.Headers.Clone()
	for _, k := range sent.Headers.Keys() {
		if !h.Has(k) {
			h.Add(k, sent.Headers.Values(k)...)
		}
	}
	return &types.Message{
		MessageID:     sent.MessageID,
		Headers:       h,
		FileContent:   in.FileContent,
		StringContent: in.StringContent,
		TrackingInfo:  sent.TrackingInfo,
	}
}
