package music

import (
	"context"
	"strings"

	"lonely/internal/commands"
	"lonely/internal/music/queue"
	"lonely/pkg/cmd"
)

type PlayCommand struct {
	Queue Queue
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Add a song from url to the queue" }
func (c *PlayCommand) Aliases() []string   { return []string{"p"} }

func (c *PlayCommand) Help() cmd.Help {
	return cmd.Help{
		Category:    Category,
		Information: "Add a song from a url or a search query to the queue. I will stay in the voice channel for one minute after the queue runs out.",
		Usage:       "[url or search query]",
		Example:     "never gonna give you up",
	}
}

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}
	if mc.VoiceChannelID == "" {
		return mc.Reply("You need to be in a voice channel to play music!")
	}
	query := strings.TrimSpace(strings.Join(inv.Args, " "))
	if query == "" {
		return mc.Reply("You need to give me a url or something to search for!")
	}

	res, err := c.Queue.Enqueue(ctx, queue.EnqueueRequest{
		GuildID:        mc.GuildID,
		Query:          query,
		VoiceChannelID: mc.VoiceChannelID,
		TextChannelID:  mc.ChannelID,
		RequestedBy:    mc.AuthorID,
	})
	if err != nil {
		return replyError(mc, err)
	}
	if text := res.Text(); text != "" {
		return mc.Reply(text)
	}
	return nil
}
