package discord

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lonely/internal/commands"
	"lonely/internal/logging"
	"lonely/internal/music/queue"
	"lonely/pkg/cmd"
)

// commandTimeout bounds one command run. A play that creates a queue waits
// for the connection and the first song to start.
const commandTimeout = 2 * time.Minute

// Message is the part of a Discord message the dispatcher looks at.
type Message struct {
	GuildID    string
	ChannelID  string
	AuthorID   string
	AuthorName string
	AuthorBot  bool
	Content    string
}

// Lookup finds commands by name or alias.
type Lookup interface {
	Get(name string) cmd.Command
}

// Dispatcher turns prefixed guild messages into command runs.
type Dispatcher struct {
	prefix   string
	commands Lookup
	// voiceChannel returns the caller's current voice channel or "".
	voiceChannel func(guildID, userID string) string
	send         func(channelID, text string) error
	log          *zap.SugaredLogger
}

func NewDispatcher(prefix string, commands Lookup, voiceChannel func(guildID, userID string) string, send func(channelID, text string) error) *Dispatcher {
	return &Dispatcher{
		prefix:       prefix,
		commands:     commands,
		voiceChannel: voiceChannel,
		send:         send,
		log:          logging.Named("dispatch"),
	}
}

// Handle runs the command named in msg. It reports whether a command ran.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) bool {
	if msg.AuthorBot || msg.GuildID == "" {
		return false
	}
	name, args, ok := cmd.Parse(d.prefix, msg.Content)
	if !ok {
		return false
	}
	c := d.commands.Get(name)
	if c == nil {
		return false
	}

	mc := &commands.MessageContext{
		GuildID:        msg.GuildID,
		ChannelID:      msg.ChannelID,
		AuthorID:       msg.AuthorID,
		AuthorName:     msg.AuthorName,
		VoiceChannelID: d.voiceChannel(msg.GuildID, msg.AuthorID),
		Prefix:         d.prefix,
		Reply: func(text string) error {
			return d.send(msg.ChannelID, text)
		},
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := c.Run(ctx, &cmd.Invocation{Name: name, Args: args, Data: mc}); err != nil {
		d.log.Warnw("command error", "command", c.Name(), "guild", msg.GuildID, "user", msg.AuthorID, "error", err)
		if serr := mc.Reply(queue.UserMessage(err)); serr != nil {
			d.log.Debugw("reply failed", "error", serr)
		}
	}
	return true
}
