package discord

import "github.com/bwmarrin/discordgo"

// Notifier implements queue.Notifier with plain channel messages.
type Notifier struct {
	s *discordgo.Session
}

func NewNotifier(s *discordgo.Session) *Notifier {
	return &Notifier{s: s}
}

func (n *Notifier) Send(channelID, text string) (string, error) {
	m, err := n.s.ChannelMessageSend(channelID, text)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (n *Notifier) Delete(channelID, messageID string) error {
	return n.s.ChannelMessageDelete(channelID, messageID)
}
