// Package storage provides the persistence backends for widget visibility maps.
package storage

import (
	"context"
	"fmt"

	"github.com/CreativeUnicorns/widgetprefs"
)

// Supported driver names for Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

var (
	_ widgetprefs.Storage = (*MemoryStorage)(nil)
	_ widgetprefs.Storage = (*FileStorage)(nil)
	_ widgetprefs.Storage = (*SQLiteStorage)(nil)
	_ widgetprefs.Storage = (*PostgresStorage)(nil)
	_ widgetprefs.Storage = (*S3Storage)(nil)
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of memory, file, sqlite, postgres or s3.
	Driver string `koanf:"driver"`

	// Dir is the FileStorage directory. Empty means DefaultDir().
	Dir string `koanf:"dir"`

	// Path is the SQLite database file. Empty means DefaultSQLitePath().
	Path string `koanf:"path"`

	// DSN is the PostgreSQL connection string.
	DSN string `koanf:"dsn"`

	// SQLDriver picks the database/sql driver: "sqlite3" (mattn, cgo) or
	// "sqlite" (modernc) for SQLite, "postgres" (lib/pq) or "pgx" for PostgreSQL.
	SQLDriver string `koanf:"sql_driver"`

	S3 S3Config `koanf:"s3"`
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (widgetprefs.Storage, error) {
	var (
		s   widgetprefs.Storage
		err error
	)
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStorage(), nil
	case DriverFile:
		s, err = openFile(cfg)
	case DriverSQLite:
		s, err = openSQLite(ctx, cfg)
	case DriverPostgres:
		s, err = openPostgres(ctx, cfg)
	case DriverS3:
		s, err = openS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", widgetprefs.ErrInvalidInput, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openFile(cfg Config) (widgetprefs.Storage, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	s, err := NewFileStorage(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, cfg Config) (widgetprefs.Storage, error) {
	path := cfg.Path
	if path == "" {
		var err error
		if path, err = DefaultSQLitePath(); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
	}
	driver := cfg.SQLDriver
	if driver == "" {
		driver = SQLiteDriverModernc
	}
	s, err := NewSQLiteStorageWithDriver(ctx, driver, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, cfg Config) (widgetprefs.Storage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres: dsn is required", widgetprefs.ErrInvalidInput)
	}
	driver := cfg.SQLDriver
	if driver == "" {
		driver = PostgresDriverPQ
	}
	s, err := NewPostgresStorageWithDriver(ctx, driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openS3(ctx context.Context, cfg Config) (widgetprefs.Storage, error) {
	s, err := NewS3Storage(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return s, nil
}
