package queue

import (
	"context"
	"time"
)

// Resolver turns user input (a URL or a search query) into a Song.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Song, error)
}

// Connection is an established voice connection owned by one GuildQueue.
type Connection interface {
	ChannelID() string
	Destroy() error
}

// Gateway connects to voice channels and answers membership questions.
type Gateway interface {
	// Connect blocks until the connection is ready or ctx is done. On
	// failure no connection may be left open.
	Connect(ctx context.Context, guildID, channelID string) (Connection, error)
	// CanJoin is the single permission gate: join and speak rights.
	CanJoin(guildID, channelID string) bool
	// MemberCount returns the number of users in the channel, the bot excluded.
	MemberCount(guildID, channelID string) int
}

// Playback is one track being streamed by a Driver.
type Playback interface {
	// Done is closed when the track ends or is stopped (the idle event).
	Done() <-chan struct{}
	Stop() error
}

// Driver starts audio playback over a connection. ctx bounds only the start:
// Start returns once the stream is actually playing.
type Driver interface {
	Start(ctx context.Context, conn Connection, song Song) (Playback, error)
}

// Notifier posts and removes plain text messages in a text channel.
type Notifier interface {
	Send(channelID, text string) (messageID string, err error)
	Delete(channelID, messageID string) error
}

// Timer is the part of *time.Timer the grace period needs.
type Timer interface {
	Stop() bool
}

// Options tune the Manager. Zero values fall back to the defaults.
type Options struct {
	GracePeriod          time.Duration
	ConnectTimeout       time.Duration
	PlaybackStartTimeout time.Duration
	// AfterFunc schedules the grace timer; time.AfterFunc when nil.
	AfterFunc func(d time.Duration, f func()) Timer
}

const (
	DefaultGracePeriod          = 60 * time.Second
	DefaultConnectTimeout       = 30 * time.Second
	DefaultPlaybackStartTimeout = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.GracePeriod <= 0 {
		o.GracePeriod = DefaultGracePeriod
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.PlaybackStartTimeout <= 0 {
		o.PlaybackStartTimeout = DefaultPlaybackStartTimeout
	}
	if o.AfterFunc == nil {
		o.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	return o
}
