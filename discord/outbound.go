package discord

import (
	"context"
	"fmt"
	"time"

	"MediaVault/archive"

	"github.com/bwmarrin/discordgo"
)

// ResolveChannel looks the channel up in the state cache, then over REST.
func (c *Client) ResolveChannel(ctx context.Context, channelID string) (*archive.Channel, error) {
	ch, err := c.session.State.Channel(channelID)
	if err != nil {
		ch, err = c.session.Channel(channelID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("ResolveChannel: failed to fetch channel %s: %w", channelID, err)
		}
	}
	return toChannel(ch), nil
}

func toChannel(ch *discordgo.Channel) *archive.Channel {
	if ch == nil {
		return nil
	}
	return &archive.Channel{
		ID:       ch.ID,
		Name:     ch.Name,
		Postable: ch.Type == discordgo.ChannelTypeGuildText,
	}
}

// Post sends post to channelID as a single embed.
func (c *Client) Post(ctx context.Context, channelID string, post archive.Post) error {
	if _, err := c.session.ChannelMessageSendEmbed(channelID, toEmbed(post), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("Post: failed to send to channel %s: %w", channelID, err)
	}
	return nil
}

func toEmbed(post archive.Post) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       post.Title,
		Description: post.Description,
		Color:       post.Color,
	}
	if !post.Timestamp.IsZero() {
		embed.Timestamp = post.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range post.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}
