package domain

import "context"

// SnapshotStorage is the minimal abstraction over durable backends. The
// store persists the whole snapshot after every mutation; backends decide
// how the bytes land (sqlite, postgres, memory).
type SnapshotStorage interface {
	// Load returns the persisted snapshot. found is false when nothing has
	// been persisted yet; a non-nil error means the persisted bytes exist
	// but could not be decoded.
	Load(ctx context.Context) (snapshot Snapshot, found bool, err error)
	// Save durably replaces the persisted snapshot.
	Save(ctx context.Context, snapshot Snapshot) error
}
