package discord

import (
	"context"
	"time"

	"MediaVault/archive"

	"github.com/bwmarrin/discordgo"
)

const captureTimeout = 10 * time.Second

func (c *Client) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || c.pipeline == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()
	c.pipeline.Capture(ctx, toInboundEvent(s.State, m.Message))
}

// toInboundEvent converts a gateway message, filling channel and server
// names from the state cache when it has them.
func toInboundEvent(state *discordgo.State, m *discordgo.Message) archive.InboundEvent {
	ev := archive.InboundEvent{
		ExternalMessageID: m.ID,
		Content:           m.Content,
		ChannelID:         m.ChannelID,
		ChannelName:       "unknown",
		ServerID:          m.GuildID,
		ServerName:        "Unknown Server",
		CreatedAt:         m.Timestamp,
	}

	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorUsername = m.Author.Username
		ev.AuthorAvatarURL = m.Author.AvatarURL("")
		ev.AuthorIsBot = m.Author.Bot
	}

	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		ev.Attachments = append(ev.Attachments, archive.Attachment{URL: a.URL})
	}

	if state != nil {
		if ch, err := state.Channel(m.ChannelID); err == nil && ch.Name != "" {
			ev.ChannelName = ch.Name
		}
		if m.GuildID != "" {
			if g, err := state.Guild(m.GuildID); err == nil && g.Name != "" {
				ev.ServerName = g.Name
			}
		}
	}
	return ev
}
