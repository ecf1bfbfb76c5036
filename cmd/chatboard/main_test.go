package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chatboard/internal/config"
	"chatboard/internal/domain"
)

func TestOpenStoreFileCreatesBothDirectories(t *testing.T) {
	// Presence and messages files pointed at separate, not-yet-existing
	// directories outside DATA_DIR.
	root := t.TempDir()
	cfg := config.Config{
		Store:        "file",
		DataDir:      filepath.Join(root, "data"),
		PresenceFile: filepath.Join(root, "presence", "logged_in_users.json"),
		MessagesFile: filepath.Join(root, "msgs", "messages.json"),
	}

	presenceRepo, messageRepo, cleanup, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	msg := domain.Message{Username: "Alice", Body: "Hello", Timestamp: "2026-08-28 12:00:00"}
	if err := messageRepo.Append(ctx, msg, 50); err != nil {
		t.Fatalf("append into fresh messages dir: %v", err)
	}
	if msgs, err := messageRepo.List(ctx); err != nil || len(msgs) != 1 {
		t.Fatalf("list: %v, %d entries", err, len(msgs))
	}

	if err := presenceRepo.Upsert(ctx, "Alice", "s1", time.Now()); err != nil {
		t.Fatalf("upsert into fresh presence dir: %v", err)
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	if _, _, _, err := openStore(config.Config{Store: "etcd"}); err == nil {
		t.Fatal("expected an error for an unknown STORE value")
	}
}
