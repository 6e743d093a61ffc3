// Package music holds the text commands that drive the guild music queue.
package music

import (
	"context"
	"errors"

	"lonely/internal/commands"
	"lonely/internal/music/queue"
	"lonely/pkg/cmd"
)

const Category = "music"

// Queue is the part of queue.Manager the commands use.
type Queue interface {
	Enqueue(ctx context.Context, req queue.EnqueueRequest) (queue.EnqueueResult, error)
	Skip(ctx context.Context, guildID, requesterVoiceChannelID string) (queue.Song, error)
	SetRepeat(ctx context.Context, guildID string, enabled bool) (bool, error)
	ToggleRepeat(ctx context.Context, guildID string) (bool, error)
	List(ctx context.Context, guildID string) (queue.Listing, error)
}

// Commands returns play, skip, repeat and queue bound to q.
func Commands(q Queue) []cmd.Command {
	return []cmd.Command{
		&PlayCommand{Queue: q},
		&SkipCommand{Queue: q},
		&RepeatCommand{Queue: q},
		&QueueCommand{Queue: q},
	}
}

var userErrors = []error{
	queue.ErrNotInVoiceChannel,
	queue.ErrPermissionDenied,
	queue.ErrResolution,
	queue.ErrConnectTimeout,
	queue.ErrPlaybackStartTimeout,
	queue.ErrNoActiveQueue,
	queue.ErrWrongChannel,
	queue.ErrQueueClosed,
}

// replyError answers known queue errors in chat and returns nil for them;
// anything else is returned for the dispatcher to log.
func replyError(c *commands.MessageContext, err error) error {
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return c.Reply(queue.UserMessage(err))
		}
	}
	return err
}
