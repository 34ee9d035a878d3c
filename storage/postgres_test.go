package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/widgetprefs"
)

// withMockDB points sqlOpenFunc at a sqlmock database for the duration of the test.
func withMockDB(t *testing.T) (sqlmock.Sqlmock, *string) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	var usedDriver string
	original := sqlOpenFunc
	sqlOpenFunc = func(driverName, _ string) (*sql.DB, error) {
		usedDriver = driverName
		return db, nil
	}
	t.Cleanup(func() {
		sqlOpenFunc = original
		db.Close()
	})
	return mock, &usedDriver
}

func newMockPostgres(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	mock, _ := withMockDB(t)
	mock.ExpectPing()
	mock.ExpectExec(regexp.QuoteMeta(postgresQueries.createTable)).WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewPostgresStorage("postgres://test")
	require.NoError(t, err)
	return s, mock
}

func TestNewPostgresStorage(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		s, mock := newMockPostgres(t)
		assert.NotNil(t, s)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pgx driver", func(t *testing.T) {
		mock, driver := withMockDB(t)
		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.createTable)).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewPostgresStorageWithDriver(context.Background(), PostgresDriverPgx, "postgres://test")
		require.NoError(t, err)
		assert.Equal(t, "pgx", *driver)
	})

	t.Run("sql open error", func(t *testing.T) {
		expectedErr := errors.New("failed to open database")
		original := sqlOpenFunc
		sqlOpenFunc = func(string, string) (*sql.DB, error) { return nil, expectedErr }
		defer func() { sqlOpenFunc = original }()

		_, err := NewPostgresStorage("postgres://test")
		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("ping error", func(t *testing.T) {
		mock, _ := withMockDB(t)
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()

		_, err := NewPostgresStorage("postgres://test")
		assert.ErrorContains(t, err, "postgres: failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migration error", func(t *testing.T) {
		mock, _ := withMockDB(t)
		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.createTable)).WillReturnError(errors.New("permission denied"))
		mock.ExpectClose()

		_, err := NewPostgresStorage("postgres://test")
		assert.ErrorContains(t, err, "postgres: failed to run migrations")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStorage_Get(t *testing.T) {
	s, mock := newMockPostgres(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectOne)).
			WithArgs("dashboard-visibility:alice").
			WillReturnRows(sqlmock.NewRows([]string{"value", "updated_at"}).AddRow([]byte(`{"a":true}`), ts.UnixNano()))

		rec, err := s.Get(ctx, "dashboard-visibility:alice")
		require.NoError(t, err)
		assert.Equal(t, "dashboard-visibility:alice", rec.Key)
		assert.Equal(t, `{"a":true}`, string(rec.Value))
		assert.True(t, ts.Equal(rec.UpdatedAt))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectOne)).
			WithArgs("dashboard-visibility:nobody").
			WillReturnRows(sqlmock.NewRows([]string{"value", "updated_at"}))

		_, err := s.Get(ctx, "dashboard-visibility:nobody")
		assert.ErrorIs(t, err, widgetprefs.ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectOne)).
			WithArgs("dashboard-visibility:alice").
			WillReturnError(errors.New("connection reset"))

		_, err := s.Get(ctx, "dashboard-visibility:alice")
		assert.ErrorContains(t, err, "postgres: failed to get")
		assert.NotErrorIs(t, err, widgetprefs.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Set(t *testing.T) {
	s, mock := newMockPostgres(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &widgetprefs.Record{Key: "dashboard-visibility:alice", Value: []byte(`{"a":false}`), UpdatedAt: ts}

	mock.ExpectExec(regexp.QuoteMeta(postgresQueries.upsert)).
		WithArgs(rec.Key, rec.Value, ts.UnixNano()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Set(ctx, rec))

	mock.ExpectExec(regexp.QuoteMeta(postgresQueries.upsert)).
		WithArgs(rec.Key, rec.Value, ts.UnixNano()).
		WillReturnError(errors.New("disk full"))
	assert.ErrorContains(t, s.Set(ctx, rec), "postgres: failed to set")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Delete(t *testing.T) {
	s, mock := newMockPostgres(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(postgresQueries.deleteOne)).
		WithArgs("dashboard-visibility:alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.Delete(ctx, "dashboard-visibility:alice"))

	mock.ExpectExec(regexp.QuoteMeta(postgresQueries.deleteOne)).
		WithArgs("dashboard-visibility:alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(ctx, "dashboard-visibility:alice"), widgetprefs.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_List(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.listKeys)).
		WithArgs("dashboard-visibility:").
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("dashboard-visibility:alice").
			AddRow("dashboard-visibility:bob"))

	keys, err := s.List(context.Background(), "dashboard-visibility:")
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard-visibility:alice", "dashboard-visibility:bob"}, keys)

	mock.ExpectClose()
	assert.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
