package storage

import (
	"context"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

// SQLite database/sql driver names.
const (
	SQLiteDriverMattn   = "sqlite3"
	SQLiteDriverModernc = "sqlite"
)

var sqliteQueries = sqlQueries{
	createTable: `
		CREATE TABLE IF NOT EXISTS widget_visibility (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`,
	upsert: `
		INSERT INTO widget_visibility (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	selectOne: `SELECT value, updated_at FROM widget_visibility WHERE key = ?`,
	listKeys:  `SELECT key FROM widget_visibility WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
	deleteOne: `DELETE FROM widget_visibility WHERE key = ?`,
}

// DefaultSQLitePath returns the per-user database file, creating its parent directory.
func DefaultSQLitePath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, "widgetprefs.db"))
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	*sqlStore
}

// NewSQLiteStorage opens the database at dbPath with the cgo driver and runs migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	return NewSQLiteStorageWithDriver(context.Background(), SQLiteDriverMattn, dbPath)
}

// NewSQLiteStorageWithDriver opens dbPath with the named database/sql driver,
// SQLiteDriverMattn or SQLiteDriverModernc.
func NewSQLiteStorageWithDriver(ctx context.Context, driver, dbPath string) (*SQLiteStorage, error) {
	s, err := openSQLStore(ctx, "sqlite", driver, dbPath, sqliteQueries)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serialize at the pool.
	s.db.SetMaxOpenConns(1)
	return &SQLiteStorage{sqlStore: s}, nil
}
