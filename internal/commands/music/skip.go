package music

import (
	"context"
	"errors"

	"lonely/internal/commands"
	"lonely/internal/music/queue"
	"lonely/pkg/cmd"
)

type SkipCommand struct {
	Queue Queue
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song in the queue" }
func (c *SkipCommand) Aliases() []string   { return []string{"s"} }
func (c *SkipCommand) Help() cmd.Help      { return cmd.Help{Category: Category} }

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := commands.FromInvocation(inv)
	if err != nil {
		return err
	}
	_, err = c.Queue.Skip(ctx, mc.GuildID, mc.VoiceChannelID)
	if errors.Is(err, queue.ErrNotInVoiceChannel) {
		return mc.Reply("You need to be in a voice channel to stop the queue!")
	}
	if err != nil {
		return replyError(mc, err)
	}
	return nil
}
