package core

import (
	"path/filepath"
	"testing"

	"traincore/internal/infra/persistence/memory"
	"traincore/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStorageSelectsDriver(t *testing.T) {
	t.Setenv("TRAINCORE_STORAGE_DRIVER", "memory")
	s, err := OpenSnapshotStorage()
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*memory.Storage); !ok {
		t.Fatalf("expected memory storage, got %T", s)
	}

	path := filepath.Join(t.TempDir(), "driver.db")
	t.Setenv("TRAINCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("TRAINCORE_SQLITE_PATH", path)
	s, err = OpenSnapshotStorage()
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	sq, ok := s.(*sqlite.Storage)
	if !ok {
		t.Fatalf("expected sqlite storage, got %T", s)
	}
	if sq.Path() != path {
		t.Fatalf("sqlite path = %q, want %q", sq.Path(), path)
	}
	_ = sq.Close()

	t.Setenv("TRAINCORE_STORAGE_DRIVER", "bogus")
	if _, err := OpenSnapshotStorage(); err == nil {
		t.Fatalf("unknown driver should error")
	}
}
