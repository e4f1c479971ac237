// Package store persists extraction records keyed by source link.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/internal/model"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverCSV      = "csv"
)

// Store is a durable collection of records, one per link. Upsert replaces an
// existing record in place; nothing is ever deleted.
type Store interface {
	Migrate(ctx context.Context) error
	Upsert(ctx context.Context, rec model.Record) error
	UpsertMany(ctx context.Context, recs []model.Record) (int, error)
	// Get returns nil, nil when no record exists for link.
	Get(ctx context.Context, link string) (*model.Record, error)
	List(ctx context.Context) ([]model.Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Options selects and configures a store backend.
type Options struct {
	Driver      string
	DatabaseURL string // sqlite path/DSN or postgres connection string
	CSVPath     string
}

// ValidDriver reports whether d names a supported driver.
func ValidDriver(d string) bool {
	switch d {
	case DriverSQLite, DriverPostgres, DriverCSV:
		return true
	}
	return false
}

// Open creates the configured store and runs its migration.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		s, err = NewSQLite(opts.DatabaseURL)
	case DriverPostgres:
		s, err = NewPostgres(ctx, opts.DatabaseURL, nil)
	case DriverCSV:
		s, err = NewCSV(opts.CSVPath)
	default:
		return nil, eris.Errorf("store: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
