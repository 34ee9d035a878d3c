package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/widgetprefs"
)

// setupSQLiteTest opens a fresh database under t.TempDir with the given driver.
func setupSQLiteTest(t *testing.T, driver string) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	storage, err := NewSQLiteStorageWithDriver(context.Background(), driver, dbPath)
	if err != nil && driver == SQLiteDriverMattn && strings.Contains(err.Error(), "CGO_ENABLED") {
		t.Skip("mattn/go-sqlite3 requires cgo")
	}
	require.NoError(t, err, "Failed to initialize SQLiteStorage")
	t.Cleanup(func() {
		assert.NoError(t, storage.Close(), "Failed to close storage")
	})
	return storage
}

func TestSQLiteStorage(t *testing.T) {
	for _, driver := range []string{SQLiteDriverModernc, SQLiteDriverMattn} {
		t.Run(driver, func(t *testing.T) {
			testStorageContract(t, setupSQLiteTest(t, driver))
		})
	}
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	s, err := NewSQLiteStorageWithDriver(ctx, SQLiteDriverModernc, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "dashboard-visibility:alice", Value: []byte(`{"a":true}`)}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorageWithDriver(ctx, SQLiteDriverModernc, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.Get(ctx, "dashboard-visibility:alice")
	require.NoError(t, err)
	assert.Equal(t, `{"a":true}`, string(rec.Value))
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestSQLiteStorage_ListTreatsPrefixLiterally(t *testing.T) {
	s := setupSQLiteTest(t, SQLiteDriverModernc)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "a_b:1", Value: []byte(`{}`)}))
	require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "axb:2", Value: []byte(`{}`)}))
	require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "a%:3", Value: []byte(`{}`)}))

	keys, err := s.List(ctx, "a_b:")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b:1"}, keys)

	keys, err = s.List(ctx, "a%")
	require.NoError(t, err)
	assert.Equal(t, []string{"a%:3"}, keys)
}
