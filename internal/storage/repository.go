package storage

import (
	"context"
	"fmt"

	"github.com/hperssn/coachbook/internal/domain"
)

// Collection names shared by every backend.
const (
	CollectionClients  = "clients"
	CollectionSessions = "sessions"
)

// Snapshot is the full persisted state: both collections, in order.
type Snapshot struct {
	Clients  []domain.Client
	Sessions []domain.Session
}

// Repository is the key/value persistence collaborator. Save always writes
// complete collections, never partial updates.
type Repository interface {
	Load(ctx context.Context) (*Snapshot, error)

	Save(ctx context.Context, snap *Snapshot) error

	Close() error
}

const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the repository for driver. dsn is a file path for bolt and
// sqlite, a connection string for postgres and ignored for memory.
func Open(driver, dsn string) (Repository, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryRepository(), nil
	case DriverBolt:
		return NewBoltRepository(dsn)
	case DriverSQLite:
		return NewSQLiteRepository(dsn)
	case DriverPostgres:
		return NewPostgresRepository(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
