package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveCapturedMessage_DuplicateExternalIDIsNoop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := &CapturedMessage{
		ExternalMessageID: "m-1",
		Content:           "hello",
		AuthorID:          "U1",
		AuthorUsername:    "alice",
		ChannelID:         "C1",
		ChannelName:       "media",
		ServerID:          "S1",
		ServerName:        "home",
		Timestamp:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		HasAttachments:    true,
		AttachmentURLs:    []string{"https://cdn.example/a.png", "https://cdn.example/b.png"},
	}
	created, err := store.SaveCapturedMessage(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatalf("expected first insert to create a row")
	}

	dup := *first
	dup.ID = ""
	dup.Content = "changed"
	created, err = store.SaveCapturedMessage(ctx, &dup)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatalf("expected duplicate external id to be ignored")
	}

	all, err := store.GetAllMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 message, got %d", len(all))
	}
	if all[0].Content != "hello" {
		t.Fatalf("expected original content kept, got %q", all[0].Content)
	}
	if len(all[0].AttachmentURLs) != 2 || all[0].AttachmentURLs[1] != "https://cdn.example/b.png" {
		t.Fatalf("unexpected attachment urls: %#v", all[0].AttachmentURLs)
	}

	byExt, err := store.GetMessageByExternalID(ctx, "m-1")
	if err != nil {
		t.Fatal(err)
	}
	if byExt == nil || byExt.ID != first.ID {
		t.Fatalf("expected lookup by external id to return the stored row")
	}
	missing, err := store.GetMessageByExternalID(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown external id")
	}
}

func TestSaveCapturedMessage_NilAttachmentsStayNil(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	msg := &CapturedMessage{
		ExternalMessageID: "m-2",
		Content:           "text only",
		AuthorID:          "U1",
		AuthorUsername:    "alice",
		ChannelID:         "C1",
		ChannelName:       "media",
		ServerID:          "S1",
		ServerName:        "home",
		Timestamp:         time.Now().UTC(),
	}
	if _, err := store.SaveCapturedMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatalf("expected message %s", msg.ID)
	}
	if got.AttachmentURLs != nil {
		t.Fatalf("expected nil attachment urls, got %#v", got.AttachmentURLs)
	}
}

func TestGetActiveWatchConfigs_OldestFirstAndActiveOnly(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	configs := []*WatchConfig{
		{ServerID: "S", ServerName: "s", ChannelID: "C2", ChannelName: "two", MonitorUserID: "U", IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{ServerID: "S", ServerName: "s", ChannelID: "C1", ChannelName: "one", MonitorUserID: "U", IsActive: true, CreatedAt: base.Add(1 * time.Hour)},
		{ServerID: "S", ServerName: "s", ChannelID: "C3", ChannelName: "off", MonitorUserID: "U", IsActive: false, CreatedAt: base},
	}
	for _, c := range configs {
		if err := store.CreateWatchConfig(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	active, err := store.GetActiveWatchConfigs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active configs, got %d", len(active))
	}
	if active[0].ChannelID != "C1" || active[1].ChannelID != "C2" {
		t.Fatalf("expected oldest first, got %s, %s", active[0].ChannelID, active[1].ChannelID)
	}

	all, err := store.GetAllWatchConfigs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ChannelID != "C2" {
		t.Fatalf("expected all configs newest first")
	}
}

func TestUpdateWatchConfig(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	config := &WatchConfig{ServerID: "S", ServerName: "s", ChannelID: "C1", ChannelName: "one", MonitorUserID: "U", IsActive: true}
	if err := store.CreateWatchConfig(ctx, config); err != nil {
		t.Fatal(err)
	}

	updated, err := store.UpdateWatchConfig(ctx, config.ID, map[string]any{
		"is_active":         false,
		"backup_channel_id": "B1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated == nil {
		t.Fatalf("expected updated config")
	}
	if updated.IsActive {
		t.Fatalf("expected config deactivated")
	}
	if updated.BackupChannel() != "B1" {
		t.Fatalf("expected backup channel B1, got %q", updated.BackupChannel())
	}

	missing, err := store.UpdateWatchConfig(ctx, "does-not-exist", map[string]any{"is_active": true})
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown config")
	}

	if err := store.DeleteWatchConfig(ctx, config.ID); err != nil {
		t.Fatal(err)
	}
	gone, err := store.GetWatchConfig(ctx, config.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Fatalf("expected config deleted")
	}
}

func TestGetAllBackups_NewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []string{BackupStatusCompleted, BackupStatusFailed} {
		rec := &BackupRecord{MessageCount: i, BackupDate: base.Add(time.Duration(i) * 24 * time.Hour), ChannelID: "B1", Status: status}
		if err := store.CreateBackup(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := store.GetAllBackups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if backups[0].Status != BackupStatusFailed {
		t.Fatalf("expected newest backup first, got %s", backups[0].Status)
	}
	got, err := store.GetBackup(ctx, backups[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != BackupStatusCompleted {
		t.Fatalf("expected completed backup by id")
	}
}
