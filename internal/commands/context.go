// Package commands holds what every text command handler shares: the
// message context the Discord adapter passes in Invocation.Data.
package commands

import (
	"errors"

	"lonely/pkg/cmd"
)

var ErrNoContext = errors.New("invocation carries no message context")

// MessageContext describes the message that triggered a command.
type MessageContext struct {
	GuildID    string
	ChannelID  string
	AuthorID   string
	AuthorName string
	// VoiceChannelID is where the author currently is; empty if not in voice.
	VoiceChannelID string
	Prefix         string
	// Reply posts plain text to ChannelID.
	Reply func(text string) error
}

// Mention renders the author as a Discord mention.
func (c *MessageContext) Mention() string {
	return "<@" + c.AuthorID + ">"
}

// FromInvocation extracts the message context set by the adapter.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, error) {
	if inv == nil {
		return nil, ErrNoContext
	}
	c, ok := inv.Data.(*MessageContext)
	if !ok || c == nil || c.Reply == nil {
		return nil, ErrNoContext
	}
	return c, nil
}
