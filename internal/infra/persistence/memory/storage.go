// Package memory provides an in-memory snapshot storage used for tests and
// ephemeral environments. Nothing survives the process.
package memory

import (
	"context"
	"sync"

	"traincore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SnapshotStorage = (*Storage)(nil)

// Storage keeps the persisted snapshot in process memory.
type Storage struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	saved    bool
}

// NewStorage constructs an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{}
}

// Load implements domain.SnapshotStorage.
func (s *Storage) Load(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return domain.Snapshot{}, false, nil
	}
	return s.snapshot.Clone(), true, nil
}

// Save implements domain.SnapshotStorage.
func (s *Storage) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot.Clone()
	s.saved = true
	return nil
}
