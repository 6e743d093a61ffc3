package music

import (
	"context"
	"fmt"
	"strings"

	"lonely/internal/commands"
	"lonely/internal/music/queue"
	"lonely/pkg/cmd"
)

// maxListed songs are printed; the totals always cover the whole queue.
const maxListed = 10

type QueueCommand struct {
	Queue Queue
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Print out the current queue of songs" }
func (c *QueueCommand) Aliases() []string   { return []string{"q"} }
func (c *QueueCommand) Help() cmd.Help      { return cmd.Help{Category: Category} }

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}
	l, err := c.Queue.List(ctx, mc.GuildID)
	if err != nil {
		return replyError(mc, err)
	}
	return mc.Reply(FormatListing(l))
}

// FormatListing renders the first ten songs followed by the totals line.
func FormatListing(l queue.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d** song(s) in queue (%s)", l.Count(), l.FormattedTotal())
	if l.Repeating {
		b.WriteString(" on repeat")
	}
	for i, s := range l.Songs {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&b, "\n%d: **%s** (%s)", i+1, s.Title, s.FormattedDuration())
	}
	return b.String()
}
