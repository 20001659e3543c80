package discord

import (
	"context"
	"testing"
	"time"

	"MediaVault/archive"

	"github.com/bwmarrin/discordgo"
)

func testState(t *testing.T) *discordgo.State {
	t.Helper()
	state := discordgo.NewState()
	if err := state.GuildAdd(&discordgo.Guild{ID: "S1", Name: "home"}); err != nil {
		t.Fatal(err)
	}
	if err := state.ChannelAdd(&discordgo.Channel{ID: "C1", GuildID: "S1", Name: "media", Type: discordgo.ChannelTypeGuildText}); err != nil {
		t.Fatal(err)
	}
	return state
}

func TestToInboundEvent_UsesStateNames(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "C1",
		GuildID:   "S1",
		Content:   "look",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "U1", Username: "alice"},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn/a.png"},
			nil,
			{URL: "https://cdn/b.mp4"},
		},
	}

	ev := toInboundEvent(testState(t), m)

	if ev.ExternalMessageID != "m1" || ev.AuthorID != "U1" || ev.AuthorUsername != "alice" {
		t.Fatalf("unexpected identity fields: %+v", ev)
	}
	if ev.ChannelName != "media" || ev.ServerName != "home" {
		t.Fatalf("expected names from state, got channel=%q server=%q", ev.ChannelName, ev.ServerName)
	}
	if !ev.CreatedAt.Equal(ts) {
		t.Fatalf("expected timestamp %v, got %v", ts, ev.CreatedAt)
	}
	if len(ev.Attachments) != 2 || ev.Attachments[0].URL != "https://cdn/a.png" || ev.Attachments[1].URL != "https://cdn/b.mp4" {
		t.Fatalf("unexpected attachments: %+v", ev.Attachments)
	}
	if ev.AuthorAvatarURL == "" {
		t.Fatalf("expected a default avatar url")
	}
}

func TestToInboundEvent_FallbackNames(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m2",
		ChannelID: "C9",
		GuildID:   "S9",
		Author:    &discordgo.User{ID: "U1", Username: "alice", Bot: true},
	}

	ev := toInboundEvent(testState(t), m)

	if ev.ChannelName != "unknown" || ev.ServerName != "Unknown Server" {
		t.Fatalf("expected fallback names, got channel=%q server=%q", ev.ChannelName, ev.ServerName)
	}
	if !ev.AuthorIsBot {
		t.Fatalf("expected bot flag to carry over")
	}
	if ev.Attachments != nil {
		t.Fatalf("expected no attachments, got %+v", ev.Attachments)
	}
}

func TestToChannel_OnlyGuildTextIsPostable(t *testing.T) {
	cases := map[discordgo.ChannelType]bool{
		discordgo.ChannelTypeGuildText:     true,
		discordgo.ChannelTypeGuildVoice:    false,
		discordgo.ChannelTypeGuildCategory: false,
		discordgo.ChannelTypeDM:            false,
	}
	for typ, want := range cases {
		got := toChannel(&discordgo.Channel{ID: "X", Name: "x", Type: typ})
		if got.Postable != want {
			t.Errorf("channel type %d: expected postable=%v, got %v", typ, want, got.Postable)
		}
	}
	if toChannel(nil) != nil {
		t.Fatalf("expected nil for nil channel")
	}
}

func TestStatusFollowsGatewayEvents(t *testing.T) {
	c := &Client{ready: make(chan struct{})}

	if c.Status().Connected {
		t.Fatalf("expected disconnected before ready")
	}

	c.onReady(nil, &discordgo.Ready{User: &discordgo.User{Username: "vault"}})
	if s := c.Status(); !s.Connected || s.AccountName != "vault" {
		t.Fatalf("unexpected status after ready: %+v", s)
	}

	c.onDisconnect(nil, &discordgo.Disconnect{})
	if s := c.Status(); s.Connected || s.AccountName != "vault" {
		t.Fatalf("unexpected status after disconnect: %+v", s)
	}

	c.onResumed(nil, &discordgo.Resumed{})
	if !c.Status().Connected {
		t.Fatalf("expected connected after resume")
	}
}

func TestWaitReady(t *testing.T) {
	c := &Client{ready: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.WaitReady(ctx); err == nil {
		t.Fatalf("expected timeout before ready")
	}

	c.onReady(nil, &discordgo.Ready{User: &discordgo.User{Username: "vault"}})
	c.onReady(nil, &discordgo.Ready{User: &discordgo.User{Username: "vault"}})
	if err := c.WaitReady(context.Background()); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
}

func TestToEmbed(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	embed := toEmbed(archive.Post{
		Title:     "Weekly Media Archive Backup",
		Color:     0x5865F2,
		Fields:    []archive.PostField{{Name: "Total Items", Value: "3", Inline: true}},
		Timestamp: ts,
	})
	if embed.Title != "Weekly Media Archive Backup" || embed.Color != 0x5865F2 {
		t.Fatalf("unexpected embed: %+v", embed)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline || embed.Fields[0].Value != "3" {
		t.Fatalf("unexpected fields: %+v", embed.Fields)
	}
	if embed.Timestamp != "2026-02-28T23:00:00Z" {
		t.Fatalf("unexpected timestamp %q", embed.Timestamp)
	}
	if toEmbed(archive.Post{Title: "x"}).Timestamp != "" {
		t.Fatalf("expected no timestamp for zero time")
	}
}
