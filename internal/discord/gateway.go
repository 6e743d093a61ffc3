package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"lonely/internal/logging"
	"lonely/internal/music/queue"
)

// Gateway implements queue.Gateway over a discordgo session.
type Gateway struct {
	s   *discordgo.Session
	log *zap.SugaredLogger
}

func NewGateway(s *discordgo.Session) *Gateway {
	return &Gateway{s: s, log: logging.Named("gateway")}
}

type joinResult struct {
	vc  *discordgo.VoiceConnection
	err error
}

// Connect joins channelID deafened. When ctx ends first the join keeps
// running in the background and its connection is torn down on arrival.
func (g *Gateway) Connect(ctx context.Context, guildID, channelID string) (queue.Connection, error) {
	res := make(chan joinResult, 1)
	go func() {
		vc, err := g.s.ChannelVoiceJoin(guildID, channelID, false, true)
		res <- joinResult{vc: vc, err: err}
	}()

	select {
	case r := <-res:
		if r.err != nil {
			if r.vc != nil {
				_ = r.vc.Disconnect()
			}
			return nil, r.err
		}
		g.log.Infow("joined voice channel", "guild", guildID, "channel", channelID)
		return &VoiceConnection{vc: r.vc, channelID: channelID}, nil
	case <-ctx.Done():
		go func() {
			if r := <-res; r.vc != nil {
				g.log.Infow("dropping late voice connection", "guild", guildID, "channel", channelID)
				_ = r.vc.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}

// CanJoin reports whether the bot may connect and speak in channelID.
func (g *Gateway) CanJoin(guildID, channelID string) bool {
	if g.s.State == nil || g.s.State.User == nil {
		return false
	}
	perms, err := g.s.State.UserChannelPermissions(g.s.State.User.ID, channelID)
	if err != nil {
		g.log.Debugw("channel permissions", "guild", guildID, "channel", channelID, "error", err)
		return false
	}
	const need = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak
	return perms&need == need
}

// MemberCount counts the humans in channelID.
func (g *Gateway) MemberCount(guildID, channelID string) int {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		return 0
	}
	var self string
	if g.s.State.User != nil {
		self = g.s.State.User.ID
	}

	n := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID || vs.UserID == self {
			continue
		}
		if g.isBot(guildID, vs) {
			continue
		}
		n++
	}
	return n
}

func (g *Gateway) isBot(guildID string, vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Bot
	}
	if m, err := g.s.State.Member(guildID, vs.UserID); err == nil && m.User != nil {
		return m.User.Bot
	}
	return false
}

// VoiceChannelOf returns the voice channel userID is in, or "".
func (g *Gateway) VoiceChannelOf(guildID, userID string) string {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

// VoiceConnection adapts a discordgo voice connection to the queue and the
// player.
type VoiceConnection struct {
	vc        *discordgo.VoiceConnection
	channelID string
	once      sync.Once
}

func (c *VoiceConnection) ChannelID() string { return c.channelID }

func (c *VoiceConnection) OpusSend() chan<- []byte { return c.vc.OpusSend }

func (c *VoiceConnection) Speaking(speaking bool) error { return c.vc.Speaking(speaking) }

// Destroy leaves the channel. Later calls are no-ops.
func (c *VoiceConnection) Destroy() error {
	var err error
	c.once.Do(func() {
		err = c.vc.Disconnect()
	})
	return err
}
