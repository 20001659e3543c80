// Package discord connects the archive to a Discord bot account: it feeds
// gateway messages into the capture pipeline and posts digests.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MediaVault/archive"

	"github.com/bwmarrin/discordgo"
	"github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"
)

var logger = log15.New("module", "discord")

const defaultLoginAttempts = 5

// Client owns the gateway session and its connection status.
type Client struct {
	session  *discordgo.Session
	pipeline *archive.Pipeline

	loginAttempts int
	loginBackoff  backoff.Backoff

	mu        sync.RWMutex
	status    archive.ConnectionStatus
	ready     chan struct{}
	readyOnce sync.Once
}

// New prepares a bot session for token. Nothing connects until Open.
func New(token string, pipeline *archive.Pipeline) (*Client, error) {
	if token == "" {
		return nil, errors.New("discord: bot token is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	c := &Client{
		session:       session,
		pipeline:      pipeline,
		loginAttempts: defaultLoginAttempts,
		ready:         make(chan struct{}),
		loginBackoff: backoff.Backoff{
			Min:    time.Second,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
	session.AddHandler(c.onReady)
	session.AddHandler(c.onResumed)
	session.AddHandler(c.onDisconnect)
	session.AddHandler(c.onMessageCreate)
	return c, nil
}

// Open logs in to the gateway, retrying with exponential backoff.
func (c *Client) Open(ctx context.Context) error {
	c.loginBackoff.Reset()
	for {
		err := c.session.Open()
		if err == nil {
			return nil
		}

		attempt := int(c.loginBackoff.Attempt()) + 1
		if attempt >= c.loginAttempts {
			return fmt.Errorf("discord: failed to login after %d attempts: %w", attempt, err)
		}
		wait := c.loginBackoff.Duration()
		logger.Warn("Failed to login to Discord, retrying", "attempt", attempt, "wait", wait, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// WaitReady blocks until the first Ready event or until ctx is done.
func (c *Client) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("discord: gateway not ready: %w", ctx.Err())
	}
}

func (c *Client) Close() error {
	c.setStatus(archive.ConnectionStatus{})
	return c.session.Close()
}

// Status returns a snapshot of the connection state.
func (c *Client) Status() archive.ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Client) setStatus(s archive.ConnectionStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Client) onReady(s *discordgo.Session, r *discordgo.Ready) {
	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	c.setStatus(archive.ConnectionStatus{Connected: true, AccountName: name})
	c.readyOnce.Do(func() { close(c.ready) })
	logger.Info("Discord bot logged in", "user", name, "guilds", len(r.Guilds))
}

func (c *Client) onResumed(s *discordgo.Session, r *discordgo.Resumed) {
	c.mu.Lock()
	c.status.Connected = true
	c.mu.Unlock()
	logger.Info("Discord session resumed")
}

func (c *Client) onDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	c.mu.Lock()
	c.status.Connected = false
	c.mu.Unlock()
	logger.Warn("Discord bot disconnected")
}
