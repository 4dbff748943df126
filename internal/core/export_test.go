package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"traincore/internal/archive"
)

func TestExportToArchiveAndRestore(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	storage := &recordingStorage{}
	store := newTestStore(t, storage, WithNow(func() time.Time { return fixed }))
	svc := NewService(store)
	ctx := context.Background()
	dst := archive.NewMemory()

	if _, err := svc.UpsertEmployee(ctx, EmployeeInput{ID: "EMP777", NameLocal: "Backup Me"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	info, err := store.ExportToArchive(ctx, dst)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, BackupPrefix) || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("unexpected backup key %q", info.Key)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("content type = %q", info.ContentType)
	}

	// Archive refuses to overwrite, so an identical timestamp collides.
	if _, err := store.ExportToArchive(ctx, dst); err == nil {
		t.Fatalf("expected collision on identical timestamp")
	}

	// Wipe the in-memory state, then restore from the backup.
	if err := store.ImportSnapshot(ctx, []byte(`{"employees":[],"courses":[],"registrations":[]}`)); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if _, found := store.Get().FindEmployee("EMP777"); found {
		t.Fatalf("wipe did not take effect")
	}

	if err := store.RestoreFromArchive(ctx, dst, info.Key); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, found := store.Get().FindEmployee("EMP777"); !found {
		t.Fatalf("restored snapshot missing employee")
	}

	backups, err := store.ListBackups(ctx, dst)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 1 || backups[0].Key != info.Key {
		t.Fatalf("unexpected backup listing %#v", backups)
	}
}

func TestRestoreFromArchiveMissingKey(t *testing.T) {
	store := newTestStore(t, &recordingStorage{})
	if err := store.RestoreFromArchive(context.Background(), archive.NewMemory(), "backups/nope.json"); err == nil {
		t.Fatalf("expected error for missing backup")
	}
}
