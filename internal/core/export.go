package core

import (
	"context"
	"fmt"

	"traincore/internal/archive"
)

// BackupPrefix groups exported snapshots under a common key prefix in the
// archive store.
const BackupPrefix = "backups/"

// ExportToArchive serializes the current snapshot and writes it to the
// archive under a timestamped key. The archive refuses to overwrite, so
// two exports within the same second surface an error rather than
// silently clobbering the earlier backup.
func (s *Store) ExportToArchive(ctx context.Context, dst archive.Store) (archive.Info, error) {
	data, err := s.ExportSnapshot()
	if err != nil {
		return archive.Info{}, err
	}
	key := BackupPrefix + s.ExportFilename()
	info, err := dst.Put(ctx, key, data, "application/json")
	if err != nil {
		return archive.Info{}, fmt.Errorf("archive backup: %w", err)
	}
	s.logger.Info("snapshot exported", "key", info.Key, "bytes", info.Size)
	return info, nil
}

// RestoreFromArchive fetches a backup blob by key and imports it as the
// new full state.
func (s *Store) RestoreFromArchive(ctx context.Context, src archive.Store, key string) error {
	_, payload, err := src.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch backup: %w", err)
	}
	return s.ImportSnapshot(ctx, payload)
}

// ListBackups enumerates archived snapshot exports.
func (s *Store) ListBackups(ctx context.Context, src archive.Store) ([]archive.Info, error) {
	return src.List(ctx, BackupPrefix)
}
