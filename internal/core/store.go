// Package core owns the single in-memory application snapshot and the
// reconciliation operations that mutate it. The store is the sole writer of
// state; everything else reads cloned snapshots and reacts to its
// change-notification signal.
package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"traincore/pkg/domain"
)

// Store mediates every read and write of the application snapshot. It loads
// from a durable backend at construction (falling back to the seed dataset
// when storage is empty or unreadable), persists the full snapshot after
// every mutation, and notifies observers with no payload.
type Store struct {
	mu      sync.RWMutex
	state   domain.Snapshot
	storage domain.SnapshotStorage
	logger  Logger
	nowFn   func() time.Time

	obsMu     sync.Mutex
	observers map[string]func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger installs a logger used for fail-soft recovery and save
// failures.
func WithLogger(l Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the time source used for export filenames.
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewStore constructs a store bound to the provided durable backend and
// performs the initial load. Load never fails hard: empty storage yields
// the seed dataset, malformed storage is logged and also yields the seed
// dataset.
func NewStore(ctx context.Context, storage domain.SnapshotStorage, opts ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("snapshot storage is required")
	}
	s := &Store{
		storage:   storage,
		logger:    noopLogger{},
		nowFn:     func() time.Time { return time.Now().UTC() },
		observers: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	snapshot, found, err := storage.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn("persisted snapshot unreadable, starting from seed dataset", "error", err)
		s.state = domain.SeedSnapshot()
	case !found:
		s.state = domain.SeedSnapshot()
	default:
		s.state = snapshot
	}
	return s, nil
}

// Get returns a deep copy of the current snapshot. Callers must route all
// writes through the engine operations; copies taken before a mutation are
// stale afterwards.
func (s *Store) Get() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers a parameterless change observer and returns its
// unsubscribe handle. Observers re-Get the snapshot; no payload is passed.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	token := newToken()
	s.obsMu.Lock()
	s.observers[token] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, token)
		s.obsMu.Unlock()
	}
}

func newToken() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

func (s *Store) notify() {
	s.obsMu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// mutate applies fn to a working copy of the snapshot, commits it, persists
// once, and notifies observers. When fn reports no change the snapshot is
// left untouched and neither save nor notification happens. Observers only
// ever see fully-applied post-states.
func (s *Store) mutate(ctx context.Context, fn func(*domain.Snapshot) (changed bool, err error)) error {
	s.mu.Lock()
	next := s.state.Clone()
	changed, err := fn(&next)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.state = next
	persisted := next.Clone()
	s.mu.Unlock()

	if err := s.storage.Save(ctx, persisted); err != nil {
		s.logger.Error("persisting snapshot failed", "error", err)
		s.notify()
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.notify()
	return nil
}

// replace swaps in a whole new snapshot, persists it, and notifies.
func (s *Store) replace(ctx context.Context, snapshot domain.Snapshot) error {
	return s.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		*next = snapshot.Clone()
		return true, nil
	})
}

// ExportSnapshot serializes the full snapshot as a pretty-printed blob
// suitable for download alongside ExportFilename.
func (s *Store) ExportSnapshot() ([]byte, error) {
	snapshot := s.Get()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// ExportFilename returns the download name for an export taken now, with an
// embedded UTC timestamp.
func (s *Store) ExportFilename() string {
	return fmt.Sprintf("traincore_backup_%s.json", s.nowFn().UTC().Format("20060102T150405Z"))
}

// requiredSnapshotKeys are the collections an imported blob must carry to
// be accepted as a full-state replacement.
var requiredSnapshotKeys = []string{"employees", "courses", "registrations"}

// ImportSnapshot validates and wholesale-replaces the in-memory state from
// an exported blob. A blob that fails to decode, or that lacks any of the
// required collections, is rejected with a MalformedSnapshotError and the
// current state is left untouched.
func (s *Store) ImportSnapshot(ctx context.Context, blob []byte) error {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(blob, &shape); err != nil {
		return &domain.MalformedSnapshotError{Reason: "not a JSON object", Err: err}
	}
	for _, key := range requiredSnapshotKeys {
		if _, ok := shape[key]; !ok {
			return &domain.MalformedSnapshotError{Reason: fmt.Sprintf("missing %q collection", key)}
		}
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return &domain.MalformedSnapshotError{Reason: "decode snapshot", Err: err}
	}
	return s.replace(ctx, snapshot)
}
