package core

import (
	"fmt"
	"os"

	"traincore/internal/infra/persistence/memory"
	"traincore/internal/infra/persistence/postgres"
	"traincore/internal/infra/persistence/sqlite"
	"traincore/pkg/domain"
)

// StorageDriver identifies a concrete durable storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenSnapshotStorage selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	TRAINCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	TRAINCORE_SQLITE_PATH: path to sqlite file (default ./traincore.db)
//	TRAINCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSnapshotStorage() (domain.SnapshotStorage, error) {
	driver := os.Getenv("TRAINCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStorage(), nil
	case StorageSQLite:
		path := os.Getenv("TRAINCORE_SQLITE_PATH")
		return sqlite.NewStorage(path)
	case StoragePostgres:
		dsn := os.Getenv("TRAINCORE_POSTGRES_DSN")
		return postgres.NewStorage(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
