package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
)

// InboxEntry is one row of the inbox command response.
type InboxEntry struct {
	MessageID string `json:"message_id"`
}

// InboxCommand returns the inbox command.
func InboxCommand() *cli.Command {
	return &cli.Command{
		Name:   "inbox",
		Usage:  "List message ids waiting in the inbox",
		Flags:  ClientFlags(),
		Action: inboxAction,
	}
}

func inboxAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(s)

	ids, err := s.service.RetrieveMessages(c.Context)
	if err != nil {
		return failure(c, err)
	}

	entries := make([]InboxEntry, len(ids))
	for i, id := range ids {
		entries[i] = InboxEntry{MessageID: id}
	}
	return r.Render(entries)
}
