// Package discord connects the bot to Discord: the session, the voice
// gateway for the music queue and the text command front end.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"lonely/internal/logging"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

// MembershipListener is told when voice channel membership of a guild changes.
type MembershipListener interface {
	OnMembershipChanged(guildID string)
}

// Bot owns the discordgo session.
type Bot struct {
	s        *discordgo.Session
	gateway  *Gateway
	notifier *Notifier
	log      *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the session without connecting.
func New(token string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = intents

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		s:        s,
		gateway:  NewGateway(s),
		notifier: NewNotifier(s),
		log:      logging.Named("discord"),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (b *Bot) Gateway() *Gateway   { return b.gateway }
func (b *Bot) Notifier() *Notifier { return b.notifier }

// NewDispatcher builds a dispatcher that answers in chat through the session.
func (b *Bot) NewDispatcher(prefix string, commands Lookup) *Dispatcher {
	return NewDispatcher(prefix, commands, b.gateway.VoiceChannelOf, func(channelID, text string) error {
		_, err := b.notifier.Send(channelID, text)
		return err
	})
}

// Open installs the handlers and connects to the gateway.
func (b *Bot) Open(d *Dispatcher, membership MembershipListener) error {
	b.s.AddHandler(b.onReady)
	b.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(s, m, d)
	})
	b.s.AddHandler(func(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		if v.GuildID != "" {
			membership.OnMembershipChanged(v.GuildID)
		}
	})

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

// Close cancels running commands and closes the session.
func (b *Bot) Close() error {
	b.cancel()
	return b.s.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Infow("discord bot is running", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, d *Dispatcher) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	d.Handle(b.ctx, Message{
		GuildID:    m.GuildID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		AuthorBot:  m.Author.Bot,
		Content:    m.Content,
	})
}
