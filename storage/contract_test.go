package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/widgetprefs"
)

// testStorageContract exercises the behavior every backend must share.
func testStorageContract(t *testing.T, s widgetprefs.Storage) {
	t.Helper()
	ctx := context.Background()
	ts := time.Date(2025, 3, 14, 15, 9, 26, 535000, time.UTC)

	t.Run("get_missing", func(t *testing.T) {
		_, err := s.Get(ctx, "dashboard-visibility:nobody")
		assert.ErrorIs(t, err, widgetprefs.ErrNotFound)
	})

	t.Run("set_then_get", func(t *testing.T) {
		rec := &widgetprefs.Record{
			Key:       "dashboard-visibility:alice",
			Value:     []byte(`{"ai-sentiment":true,"funding-rounds":false}`),
			UpdatedAt: ts,
		}
		require.NoError(t, s.Set(ctx, rec))

		got, err := s.Get(ctx, rec.Key)
		require.NoError(t, err)
		assert.Equal(t, rec.Key, got.Key)
		assert.JSONEq(t, string(rec.Value), string(got.Value))
		assert.True(t, ts.Equal(got.UpdatedAt), "UpdatedAt: want %v, got %v", ts, got.UpdatedAt)
	})

	t.Run("overwrite", func(t *testing.T) {
		key := "dashboard-visibility:alice"
		require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: key, Value: []byte(`{"a":false}`), UpdatedAt: ts.Add(time.Second)}))

		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":false}`, string(got.Value))
		assert.True(t, ts.Add(time.Second).Equal(got.UpdatedAt))
	})

	t.Run("unusual_key", func(t *testing.T) {
		key := "dashboard-visibility:team/ops lead%1"
		require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: key, Value: []byte(`{}`), UpdatedAt: ts}))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, key, got.Key)
		require.NoError(t, s.Delete(ctx, key))
	})

	t.Run("list_by_prefix", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "dashboard-visibility:bob", Value: []byte(`{}`), UpdatedAt: ts}))
		require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "ops-board:carol", Value: []byte(`{}`), UpdatedAt: ts}))

		keys, err := s.List(ctx, "dashboard-visibility:")
		require.NoError(t, err)
		assert.Equal(t, []string{"dashboard-visibility:alice", "dashboard-visibility:bob"}, keys)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		none, err := s.List(ctx, "missing:")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		key := "dashboard-visibility:bob"
		require.NoError(t, s.Delete(ctx, key))

		_, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, widgetprefs.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, key), widgetprefs.ErrNotFound)
	})

	t.Run("invalid_record", func(t *testing.T) {
		assert.ErrorIs(t, s.Set(ctx, nil), widgetprefs.ErrInvalidInput)
		assert.ErrorIs(t, s.Set(ctx, &widgetprefs.Record{}), widgetprefs.ErrInvalidInput)
	})
}
