package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"traincore/pkg/domain"
)

func TestBucketCodecs(t *testing.T) {
	snap := domain.SeedSnapshot()
	for _, bucket := range buckets {
		data, err := encodeBucket(snap, bucket)
		if err != nil {
			t.Fatalf("encode %s: %v", bucket, err)
		}
		var decoded domain.Snapshot
		if err := decodeBucket(&decoded, bucket, data); err != nil {
			t.Fatalf("decode %s: %v", bucket, err)
		}
	}
	if _, err := encodeBucket(snap, "bogus"); err == nil {
		t.Fatalf("unknown bucket should fail to encode")
	}

	var decoded domain.Snapshot
	err := decodeBucket(&decoded, "employees", []byte("{corrupt"))
	var malformed *domain.MalformedSnapshotError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedSnapshotError, got %v", err)
	}
}

// TestStorageIntegration exercises a live server and is skipped unless a
// DSN is provided, e.g.
//
//	TRAINCORE_POSTGRES_TEST_DSN=postgres://localhost/traincore_test?sslmode=disable go test ./...
func TestStorageIntegration(t *testing.T) {
	dsn := os.Getenv("TRAINCORE_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("TRAINCORE_POSTGRES_TEST_DSN not set")
	}
	s, err := NewStorage(dsn)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if err := s.Save(ctx, domain.SeedSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, found, err := s.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(loaded.Employees) == 0 || len(loaded.Courses) == 0 {
		t.Fatalf("round trip lost data: %#v", loaded)
	}
}
