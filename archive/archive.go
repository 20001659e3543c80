// Package archive implements the capture pipeline that persists watched
// chat messages and the digest publisher that re-posts captured media to
// a backup channel.
package archive

import (
	"context"
	"errors"
	"time"

	"MediaVault/db"

	"github.com/inconshreveable/log15/v3"
)

var logger = log15.New("module", "archive")

var (
	ErrNotConnected         = errors.New("bot not connected")
	ErrNoBackupChannel      = errors.New("no backup channel configured")
	ErrInvalidBackupChannel = errors.New("invalid backup channel")
	ErrDigestRunning        = errors.New("digest already running")
)

// Store is the subset of the durable store the pipeline and the digest
// publisher use.
type Store interface {
	GetActiveWatchConfigs(ctx context.Context) ([]db.WatchConfig, error)
	GetAllMessages(ctx context.Context) ([]db.CapturedMessage, error)
	GetMessageByExternalID(ctx context.Context, externalID string) (*db.CapturedMessage, error)
	SaveCapturedMessage(ctx context.Context, message *db.CapturedMessage) (bool, error)
	CreateBackup(ctx context.Context, backup *db.BackupRecord) error
}

// ChatSource is the live chat connection: its status, channel lookup and
// outbound posting.
type ChatSource interface {
	Status() ConnectionStatus
	ResolveChannel(ctx context.Context, channelID string) (*Channel, error)
	Post(ctx context.Context, channelID string, post Post) error
}

// ConnectionStatus is a point-in-time snapshot of the chat connection.
type ConnectionStatus struct {
	Connected   bool   `json:"connected"`
	AccountName string `json:"username,omitempty"`
}

// Channel is a resolved outbound channel. Postable is false for voice,
// category and other channels that cannot take text messages.
type Channel struct {
	ID       string
	Name     string
	Postable bool
}

// Post is one outbound message, rendered by the chat source as an embed.
type Post struct {
	Title       string
	Description string
	Color       int
	Fields      []PostField
	Timestamp   time.Time
}

type PostField struct {
	Name   string
	Value  string
	Inline bool
}

// InboundEvent is a chat message as delivered by the chat source.
type InboundEvent struct {
	ExternalMessageID string
	Content           string
	AuthorID          string
	AuthorUsername    string
	AuthorAvatarURL   string
	AuthorIsBot       bool
	ChannelID         string
	ChannelName       string
	ServerID          string
	ServerName        string
	CreatedAt         time.Time
	Attachments       []Attachment
}

type Attachment struct {
	URL string
}
