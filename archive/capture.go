package archive

import (
	"context"
	"fmt"
	"time"

	"MediaVault/db"
)

// Pipeline persists inbound chat events that match an active watch config.
type Pipeline struct {
	store     Store
	onCapture func(db.CapturedMessage)
	now       func() time.Time
}

func NewPipeline(store Store) *Pipeline {
	return &Pipeline{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// OnCapture registers fn to be called after every newly stored message.
// It must be set before events start flowing.
func (p *Pipeline) OnCapture(fn func(db.CapturedMessage)) {
	p.onCapture = fn
}

// Capture runs one event through filter, de-duplication and storage.
// Failures are logged and never returned, so one bad event cannot stop
// the event stream.
func (p *Pipeline) Capture(ctx context.Context, event InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Capture panicked", "message", event.ExternalMessageID, "panic", fmt.Sprint(r))
		}
	}()

	if _, err := p.capture(ctx, event); err != nil {
		logger.Error("Error processing message", "message", event.ExternalMessageID, "channel", event.ChannelID, "err", err)
	}
}

func (p *Pipeline) capture(ctx context.Context, event InboundEvent) (*db.CapturedMessage, error) {
	if event.AuthorIsBot {
		return nil, nil
	}
	if event.ExternalMessageID == "" {
		return nil, fmt.Errorf("capture: event has no external message id")
	}

	configs, err := p.store.GetActiveWatchConfigs(ctx)
	if err != nil {
		return nil, err
	}

	config := ShouldCapture(event, configs)
	if config == nil {
		logger.Debug("Dropped unwatched message", "message", event.ExternalMessageID, "channel", event.ChannelID, "author", event.AuthorID)
		return nil, nil
	}

	existing, err := p.store.GetMessageByExternalID(ctx, event.ExternalMessageID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Debug("Dropped duplicate message", "message", event.ExternalMessageID)
		return nil, nil
	}

	message := buildCapturedMessage(event, p.now())
	created, err := p.store.SaveCapturedMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost a race with a redelivery of the same event.
		return nil, nil
	}

	logger.Info("Saved media message", "author", message.AuthorUsername, "channel", message.ChannelName,
		"attachments", len(message.AttachmentURLs), "watch", config.ID)

	if p.onCapture != nil {
		p.onCapture(*message)
	}
	return message, nil
}

func buildCapturedMessage(event InboundEvent, now time.Time) *db.CapturedMessage {
	var urls []string
	for _, a := range event.Attachments {
		urls = append(urls, a.URL)
	}

	var avatar *string
	if event.AuthorAvatarURL != "" {
		avatar = &event.AuthorAvatarURL
	}

	timestamp := event.CreatedAt
	if timestamp.IsZero() {
		timestamp = now
	}

	return &db.CapturedMessage{
		ExternalMessageID: event.ExternalMessageID,
		Content:           event.Content,
		AuthorID:          event.AuthorID,
		AuthorUsername:    event.AuthorUsername,
		AuthorAvatar:      avatar,
		ChannelID:         event.ChannelID,
		ChannelName:       event.ChannelName,
		ServerID:          event.ServerID,
		ServerName:        event.ServerName,
		Timestamp:         timestamp.UTC(),
		HasAttachments:    len(event.Attachments) > 0,
		AttachmentURLs:    urls,
		CreatedAt:         now,
	}
}
