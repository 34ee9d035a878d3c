package storage

import (
	"context"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
)

// PostgreSQL database/sql driver names.
const (
	PostgresDriverPQ  = "postgres"
	PostgresDriverPgx = "pgx"
)

var postgresQueries = sqlQueries{
	createTable: `
		CREATE TABLE IF NOT EXISTS widget_visibility (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at BIGINT NOT NULL
		);
	`,
	upsert: `
		INSERT INTO widget_visibility (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
	selectOne: `SELECT value, updated_at FROM widget_visibility WHERE key = $1`,
	listKeys:  `SELECT key FROM widget_visibility WHERE left(key, char_length($1::text)) = $1::text ORDER BY key`,
	deleteOne: `DELETE FROM widget_visibility WHERE key = $1`,
}

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	*sqlStore
}

// NewPostgresStorage connects with lib/pq and runs migrations.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	return NewPostgresStorageWithDriver(context.Background(), PostgresDriverPQ, connString)
}

// NewPostgresStorageWithDriver connects with the named database/sql driver,
// PostgresDriverPQ or PostgresDriverPgx.
func NewPostgresStorageWithDriver(ctx context.Context, driver, connString string) (*PostgresStorage, error) {
	s, err := openSQLStore(ctx, "postgres", driver, connString, postgresQueries)
	if err != nil {
		return nil, err
	}
	return &PostgresStorage{sqlStore: s}, nil
}
