package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mesh/cli/render"
	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/types"
)

// TrackCommand returns the track command.
func TrackCommand() *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Show the tracking record of a sent message",
		ArgsUsage: "<message-id>",
		Flags:     ClientFlags(),
		Action:    trackAction,
	}
}

func trackAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return cli.Exit("track requires exactly one message id", exitValidation)
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(s)

	msg, err := s.service.TrackMessage(c.Context, c.Args().First())
	if err != nil {
		return failure(c, err)
	}

	info := msg.TrackingInfo
	if info == nil {
		info = &types.TrackingInfo{MessageID: msg.MessageID}
	}
	return r.Render(info)
}
