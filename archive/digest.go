package archive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"MediaVault/db"

	"golang.org/x/sync/semaphore"
)

const (
	maxMessagesPerDate = 10
	// Discord caps embed descriptions at 4096 characters.
	maxDigestChars   = 4000
	DefaultPostDelay = time.Second

	summaryColor = 0x5865F2
	dateColor    = 0x3498db
)

// DigestResult is returned verbatim to API callers.
type DigestResult struct {
	Success      bool   `json:"success"`
	MessageCount *int   `json:"messageCount,omitempty"`
	Error        string `json:"error,omitempty"`
}

func digestSucceeded(count int) DigestResult {
	return DigestResult{Success: true, MessageCount: &count}
}

func digestFailed(err error) DigestResult {
	return DigestResult{Success: false, Error: err.Error()}
}

// Publisher posts the media digest to the first configured backup channel
// and records the outcome.
type Publisher struct {
	store     Store
	chat      ChatSource
	postDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	running   *semaphore.Weighted
}

// NewPublisher creates a publisher. postDelay is the pause between
// successive date posts; zero or less selects DefaultPostDelay.
func NewPublisher(store Store, chat ChatSource, postDelay time.Duration) *Publisher {
	if postDelay <= 0 {
		postDelay = DefaultPostDelay
	}
	return &Publisher{
		store:     store,
		chat:      chat,
		postDelay: postDelay,
		sleep:     sleepContext,
		now:       func() time.Time { return time.Now().UTC() },
		running:   semaphore.NewWeighted(1),
	}
}

// Run performs one digest. Only one run executes at a time; an overlapping
// call fails immediately with ErrDigestRunning.
func (p *Publisher) Run(ctx context.Context) DigestResult {
	if !p.running.TryAcquire(1) {
		logger.Warn("Digest skipped, another run is in progress")
		return digestFailed(ErrDigestRunning)
	}
	defer p.running.Release(1)

	if !p.chat.Status().Connected {
		logger.Info("Bot not connected, skipping backup")
		return digestFailed(ErrNotConnected)
	}

	configs, err := p.store.GetActiveWatchConfigs(ctx)
	if err != nil {
		logger.Error("Backup failed", "err", err)
		return digestFailed(err)
	}
	messages, err := p.store.GetAllMessages(ctx)
	if err != nil {
		logger.Error("Backup failed", "err", err)
		return digestFailed(err)
	}

	if len(messages) == 0 {
		logger.Info("No messages to backup")
		return digestSucceeded(0)
	}

	destination := backupDestination(configs)
	if destination == "" {
		logger.Info("No backup channel configured")
		return digestFailed(ErrNoBackupChannel)
	}

	channel, err := p.chat.ResolveChannel(ctx, destination)
	if err != nil || channel == nil || !channel.Postable {
		logger.Warn("Backup channel not found or not a text channel", "channel", destination, "err", err)
		return digestFailed(ErrInvalidBackupChannel)
	}

	if err := p.publish(ctx, channel.ID, messages); err != nil {
		return p.recordFailure(ctx, channel.ID, err)
	}

	record := &db.BackupRecord{
		MessageCount: len(messages),
		BackupDate:   p.now(),
		ChannelID:    channel.ID,
		Status:       db.BackupStatusCompleted,
	}
	if err := p.store.CreateBackup(ctx, record); err != nil {
		return p.recordFailure(ctx, channel.ID, err)
	}

	logger.Info("Backup completed", "messages", len(messages), "channel", channel.ID)
	return digestSucceeded(len(messages))
}

func (p *Publisher) recordFailure(ctx context.Context, channelID string, cause error) DigestResult {
	logger.Error("Backup failed", "channel", channelID, "err", cause)

	// The run context may be the reason we failed; the record is still owed.
	recordCtx := context.WithoutCancel(ctx)
	record := &db.BackupRecord{
		MessageCount: 0,
		BackupDate:   p.now(),
		ChannelID:    channelID,
		Status:       db.BackupStatusFailed,
	}
	if err := p.store.CreateBackup(recordCtx, record); err != nil {
		logger.Error("Failed to record failed backup", "channel", channelID, "err", err)
	}
	return digestFailed(cause)
}

func (p *Publisher) publish(ctx context.Context, channelID string, messages []db.CapturedMessage) error {
	withMedia := 0
	for _, m := range messages {
		if m.HasAttachments {
			withMedia++
		}
	}

	summary := Post{
		Title:       "Weekly Media Archive Backup",
		Description: fmt.Sprintf("Backup completed with **%d** total media items archived.", len(messages)),
		Color:       summaryColor,
		Fields: []PostField{
			{Name: "Total Items", Value: fmt.Sprint(len(messages)), Inline: true},
			{Name: "With Media", Value: fmt.Sprint(withMedia), Inline: true},
		},
		Timestamp: p.now(),
	}
	if err := p.chat.Post(ctx, channelID, summary); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}

	for i, group := range groupByDate(messages) {
		if i > 0 {
			if err := p.sleep(ctx, p.postDelay); err != nil {
				return err
			}
		}
		post := Post{
			Title:       "Media from " + group.Key,
			Description: renderDateGroup(group.Messages),
			Color:       dateColor,
		}
		if err := p.chat.Post(ctx, channelID, post); err != nil {
			return fmt.Errorf("post media for %s: %w", group.Key, err)
		}
	}
	return nil
}

// backupDestination returns the backup channel of the first config that
// has one.
func backupDestination(configs []db.WatchConfig) string {
	for i := range configs {
		if id := configs[i].BackupChannel(); id != "" {
			return id
		}
	}
	return ""
}

type dateGroup struct {
	Key      string
	Day      time.Time
	Messages []db.CapturedMessage
}

// groupByDate buckets messages that carry attachment urls by the UTC
// calendar day of their original timestamp. Groups come back in ascending
// day order; messages within a group newest first, so the per-day cap
// keeps the latest ones.
func groupByDate(messages []db.CapturedMessage) []dateGroup {
	index := make(map[time.Time]int)
	var groups []dateGroup
	for _, m := range messages {
		if !m.HasAttachments || len(m.AttachmentURLs) == 0 {
			continue
		}
		ts := m.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, dateGroup{Key: day.Format("2006-01-02"), Day: day})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].Day.Before(groups[b].Day) })
	for _, g := range groups {
		sort.SliceStable(g.Messages, func(a, b int) bool {
			ta, tb := g.Messages[a].Timestamp, g.Messages[b].Timestamp
			if ta.Equal(tb) {
				return g.Messages[a].ExternalMessageID > g.Messages[b].ExternalMessageID
			}
			return ta.After(tb)
		})
	}
	return groups
}

func renderDateGroup(messages []db.CapturedMessage) string {
	if len(messages) > maxMessagesPerDate {
		messages = messages[:maxMessagesPerDate]
	}

	var sb strings.Builder
	for _, m := range messages {
		caption := m.Content
		if caption == "" {
			caption = "(no caption)"
		}
		fmt.Fprintf(&sb, "**%s** in #%s:\n%s\n%s\n\n", m.AuthorUsername, m.ChannelName, caption, strings.Join(m.AttachmentURLs, "\n"))
	}
	return truncateRunes(sb.String(), maxDigestChars)
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
