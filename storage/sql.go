package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CreativeUnicorns/widgetprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

// sqlQueries holds the dialect-specific statements for one table layout:
// key TEXT PRIMARY KEY, value BLOB, updated_at as Unix nanoseconds.
type sqlQueries struct {
	createTable string
	upsert      string
	selectOne   string
	listKeys    string
	deleteOne   string
}

// sqlStore implements the Storage operations shared by the database/sql backends.
type sqlStore struct {
	db      *sql.DB
	name    string
	queries sqlQueries
}

func openSQLStore(ctx context.Context, name, driver, dsn string, q sqlQueries) (*sqlStore, error) {
	db, err := sqlOpenFunc(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database connection: %w", name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", name, err)
	}

	s := &sqlStore{db: db, name: name, queries: q}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.queries.createTable); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", s.name, err)
	}
	return nil
}

// Get retrieves the record stored under key.
// It returns widgetprefs.ErrNotFound if the key does not exist.
func (s *sqlStore) Get(ctx context.Context, key string) (*widgetprefs.Record, error) {
	var value []byte
	var updated int64

	err := s.db.QueryRowContext(ctx, s.queries.selectOne, key).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, widgetprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get %q: %w", s.name, key, err)
	}

	return &widgetprefs.Record{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Unix(0, updated).UTC(),
	}, nil
}

// Set inserts or replaces the record.
func (s *sqlStore) Set(ctx context.Context, rec *widgetprefs.Record) error {
	if rec == nil || rec.Key == "" {
		return widgetprefs.ErrInvalidInput
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	if _, err := s.db.ExecContext(ctx, s.queries.upsert, rec.Key, rec.Value, updated.UnixNano()); err != nil {
		return fmt.Errorf("%s: failed to set %q: %w", s.name, rec.Key, err)
	}
	return nil
}

// Delete removes key. It returns widgetprefs.ErrNotFound if no row matched.
func (s *sqlStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, s.queries.deleteOne, key)
	if err != nil {
		return fmt.Errorf("%s: failed to delete %q: %w", s.name, key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows for %q: %w", s.name, key, err)
	}
	if rows == 0 {
		return widgetprefs.ErrNotFound
	}
	return nil
}

// List returns the keys beginning with prefix in ascending order.
func (s *sqlStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.listKeys, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list keys: %w", s.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%s: failed to scan key: %w", s.name, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating keys: %w", s.name, err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}
