package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)

// WatchConfig pairs one channel with the single author whose messages
// are archived from it.
type WatchConfig struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	ServerID          string    `gorm:"not null" json:"serverId"`
	ServerName        string    `gorm:"not null" json:"serverName"`
	ChannelID         string    `gorm:"index;not null" json:"channelId"`
	ChannelName       string    `gorm:"not null" json:"channelName"`
	BackupChannelID   *string   `json:"backupChannelId"`
	BackupChannelName *string   `json:"backupChannelName"`
	MonitorUserID     string    `gorm:"not null" json:"monitorUserId"`
	IsActive          bool      `gorm:"index;not null" json:"isActive"`
	CreatedAt         time.Time `gorm:"index;not null" json:"createdAt"`
}

func (w *WatchConfig) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// BackupChannel returns the configured backup channel id, or "".
func (w *WatchConfig) BackupChannel() string {
	if w.BackupChannelID == nil {
		return ""
	}
	return *w.BackupChannelID
}

// CapturedMessage is an archived chat event. ExternalMessageID is the
// de-duplication key.
type CapturedMessage struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	ExternalMessageID string    `gorm:"column:discord_message_id;uniqueIndex;not null" json:"discordMessageId"`
	Content           string    `gorm:"not null" json:"content"`
	AuthorID          string    `gorm:"not null" json:"authorId"`
	AuthorUsername    string    `gorm:"not null" json:"authorUsername"`
	AuthorAvatar      *string   `json:"authorAvatar"`
	ChannelID         string    `gorm:"index;not null" json:"channelId"`
	ChannelName       string    `gorm:"not null" json:"channelName"`
	ServerID          string    `gorm:"not null" json:"serverId"`
	ServerName        string    `gorm:"not null" json:"serverName"`
	Timestamp         time.Time `gorm:"index;not null" json:"timestamp"`
	HasAttachments    bool      `gorm:"not null;default:false" json:"hasAttachments"`
	AttachmentURLs    []string  `gorm:"column:attachment_urls;serializer:json" json:"attachmentUrls"`
	CreatedAt         time.Time `gorm:"not null" json:"createdAt"`
}

func (m *CapturedMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BackupRecord is the outcome of one digest run.
type BackupRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	MessageCount int       `gorm:"not null" json:"messageCount"`
	BackupDate   time.Time `gorm:"index;not null" json:"backupDate"`
	ChannelID    string    `gorm:"not null" json:"channelId"`
	Status       string    `gorm:"not null;default:completed" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (b *BackupRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (WatchConfig) TableName() string     { return "bot_config" }
func (CapturedMessage) TableName() string { return "messages" }
func (BackupRecord) TableName() string    { return "backups" }
