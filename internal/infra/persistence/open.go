// Package persistence selects a durable network store backend.
package persistence

import (
	"fmt"
	"os"

	"chemcore/internal/core"
	"chemcore/internal/infra/persistence/postgres"
	"chemcore/internal/infra/persistence/sqlite"
	"chemcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Open selects a backend using environment variables. Defaults to memory
// when unset.
//
//	CHEMCORE_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	CHEMCORE_SQLITE_PATH: path to sqlite file (default ./chemcore.db)
//	CHEMCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(codec domain.Codec) (domain.Network, error) {
	driver := os.Getenv("CHEMCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return core.NewNetwork(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("CHEMCORE_SQLITE_PATH"), codec)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("CHEMCORE_POSTGRES_DSN"), codec)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
