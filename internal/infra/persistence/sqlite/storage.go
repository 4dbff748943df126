// Package sqlite persists the application snapshot to a single SQLite
// table as JSON blobs, one row per collection. The full snapshot is
// rewritten after every successful mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"traincore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SnapshotStorage = (*Storage)(nil)

// Storage is a snapshotting SQLite-backed storage.
type Storage struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStorage opens (or creates) the sqlite file and ensures the state
// table exists.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		path = "traincore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

var buckets = []string{"employees", "courses", "sessions", "registrations", "attendance"}

// Load implements domain.SnapshotStorage. found is false when the state
// table holds no rows yet; a row that fails to decode is an error the
// caller recovers from (seed fallback).
func (s *Storage) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot domain.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("scan: %w", err)
		}
		found = true
		if err := decodeBucket(&snapshot, bucket, payload); err != nil {
			return domain.Snapshot{}, true, err
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, found, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, found, nil
}

// Save implements domain.SnapshotStorage. All five buckets are upserted in
// one transaction.
func (s *Storage) Save(ctx context.Context, snapshot domain.Snapshot) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		data, err := encodeBucket(snapshot, bucket)
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Storage) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Storage) Path() string { return s.path }

// Close releases the database handle.
func (s *Storage) Close() error { return s.db.Close() }

func decodeBucket(snapshot *domain.Snapshot, bucket string, payload []byte) error {
	var err error
	switch bucket {
	case "employees":
		err = json.Unmarshal(payload, &snapshot.Employees)
	case "courses":
		err = json.Unmarshal(payload, &snapshot.Courses)
	case "sessions":
		err = json.Unmarshal(payload, &snapshot.Sessions)
	case "registrations":
		err = json.Unmarshal(payload, &snapshot.Registrations)
	case "attendance":
		err = json.Unmarshal(payload, &snapshot.Attendance)
	}
	if err != nil {
		return &domain.MalformedSnapshotError{Reason: fmt.Sprintf("decode %s", bucket), Err: err}
	}
	return nil
}

func encodeBucket(snapshot domain.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case "employees":
		return json.Marshal(snapshot.Employees)
	case "courses":
		return json.Marshal(snapshot.Courses)
	case "sessions":
		return json.Marshal(snapshot.Sessions)
	case "registrations":
		return json.Marshal(snapshot.Registrations)
	case "attendance":
		return json.Marshal(snapshot.Attendance)
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}
