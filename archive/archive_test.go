package archive

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"MediaVault/db"
)

type fakeChat struct {
	mu        sync.Mutex
	connected bool
	channels  map[string]*Channel
	posts     []fakePost
	failAt    int // 1-based post index that fails; 0 never fails
	block     chan struct{}
	entered   chan struct{}
	afterPost func(n int)
}

type fakePost struct {
	channelID string
	post      Post
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		connected: true,
		channels: map[string]*Channel{
			"B1":    {ID: "B1", Name: "backups", Postable: true},
			"VOICE": {ID: "VOICE", Name: "lounge", Postable: false},
		},
	}
}

func (f *fakeChat) Status() ConnectionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ConnectionStatus{Connected: f.connected, AccountName: "vault-bot"}
}

func (f *fakeChat) ResolveChannel(ctx context.Context, channelID string) (*Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[channelID], nil
}

func (f *fakeChat) Post(ctx context.Context, channelID string, post Post) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.posts = append(f.posts, fakePost{channelID: channelID, post: post})
	n := len(f.posts)
	hook := f.afterPost
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if f.failAt > 0 && n == f.failAt {
		return errors.New("discord: 500 internal error")
	}
	return nil
}

func (f *fakeChat) Posts() []fakePost {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakePost, len(f.posts))
	copy(out, f.posts)
	return out
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addWatch(t *testing.T, store *db.Store, channelID, userID, backupID string, createdAt time.Time) *db.WatchConfig {
	t.Helper()
	config := &db.WatchConfig{
		ServerID:      "S1",
		ServerName:    "home",
		ChannelID:     channelID,
		ChannelName:   "media-" + channelID,
		MonitorUserID: userID,
		IsActive:      true,
		CreatedAt:     createdAt,
	}
	if backupID != "" {
		config.BackupChannelID = &backupID
	}
	if err := store.CreateWatchConfig(context.Background(), config); err != nil {
		t.Fatal(err)
	}
	return config
}

func event(id, channelID, authorID, content string, urls ...string) InboundEvent {
	ev := InboundEvent{
		ExternalMessageID: id,
		Content:           content,
		AuthorID:          authorID,
		AuthorUsername:    "user-" + authorID,
		ChannelID:         channelID,
		ChannelName:       "media-" + channelID,
		ServerID:          "S1",
		ServerName:        "home",
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, u := range urls {
		ev.Attachments = append(ev.Attachments, Attachment{URL: u})
	}
	return ev
}

func mustMessages(t *testing.T, store *db.Store) []db.CapturedMessage {
	t.Helper()
	msgs, err := store.GetAllMessages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return msgs
}

func mustBackups(t *testing.T, store *db.Store) []db.BackupRecord {
	t.Helper()
	backups, err := store.GetAllBackups(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return backups
}
