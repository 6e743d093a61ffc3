package music

import (
	"context"
	"strings"

	"lonely/internal/commands"
	"lonely/pkg/cmd"
)

type RepeatCommand struct {
	Queue Queue
}

func (c *RepeatCommand) Name() string        { return "repeat" }
func (c *RepeatCommand) Description() string { return "Keep cycling through the queue" }
func (c *RepeatCommand) Aliases() []string   { return []string{"loop"} }

func (c *RepeatCommand) Help() cmd.Help {
	return cmd.Help{
		Category:    Category,
		Information: "Finished songs go back to the end of the queue while repeat is on. Without an argument repeat is toggled.",
		Usage:       "[on|off]",
		Example:     "on",
	}
}

func (c *RepeatCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}

	var on bool
	if len(inv.Args) == 0 {
		on, err = c.Queue.ToggleRepeat(ctx, mc.GuildID)
	} else {
		switch strings.ToLower(inv.Args[0]) {
		case "on", "true", "yes":
			on, err = c.Queue.SetRepeat(ctx, mc.GuildID, true)
		case "off", "false", "no":
			on, err = c.Queue.SetRepeat(ctx, mc.GuildID, false)
		default:
			return mc.Reply("Use `" + mc.Prefix + c.Name() + " on` or `" + mc.Prefix + c.Name() + " off`")
		}
	}
	if err != nil {
		return replyError(mc, err)
	}
	if on {
		return mc.Reply("Repeat is **on**")
	}
	return mc.Reply("Repeat is **off**")
}
