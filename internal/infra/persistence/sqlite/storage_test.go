package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"traincore/pkg/domain"
)

func newTempStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadEmptyDatabase(t *testing.T) {
	s := newTempStorage(t)
	_, found, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("empty state table must report not found")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTempStorage(t)
	ctx := context.Background()

	snap := domain.SeedSnapshot()
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, found, err := s.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(loaded.Employees) != len(snap.Employees) ||
		len(loaded.Courses) != len(snap.Courses) ||
		len(loaded.Sessions) != len(snap.Sessions) ||
		len(loaded.Registrations) != len(snap.Registrations) ||
		len(loaded.Attendance) != len(snap.Attendance) {
		t.Fatalf("collection sizes changed across round trip")
	}
	if loaded.Courses[0].ValidityMonths == nil || *loaded.Courses[0].ValidityMonths != 12 {
		t.Fatalf("optional validity lost: %#v", loaded.Courses[0])
	}
	if loaded.Registrations[0].Status != domain.StatusAttended {
		t.Fatalf("status lost: %#v", loaded.Registrations[0])
	}

	// Second save overwrites, not duplicates.
	snap.Employees = snap.Employees[:1]
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, _, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Employees) != 1 {
		t.Fatalf("upsert did not replace bucket, got %d employees", len(loaded.Employees))
	}
}

func TestLoadMalformedBucket(t *testing.T) {
	s := newTempStorage(t)
	ctx := context.Background()

	if err := s.Save(ctx, domain.SeedSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx, `UPDATE state SET payload = ? WHERE bucket = 'employees'`, []byte("{corrupt")); err != nil {
		t.Fatalf("corrupt bucket: %v", err)
	}

	_, found, err := s.Load(ctx)
	var malformed *domain.MalformedSnapshotError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedSnapshotError, got %v", err)
	}
	if !found {
		t.Fatalf("corrupt but present data should still report found")
	}
}

func TestDefaultPath(t *testing.T) {
	s := &Storage{path: "traincore.db"}
	if s.Path() != "traincore.db" {
		t.Fatalf("path accessor broken")
	}
}
