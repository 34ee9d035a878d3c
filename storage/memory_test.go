package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/widgetprefs"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	testStorageContract(t, s)
	assert.NoError(t, s.Close())
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	value := []byte(`{"a":true}`)
	require.NoError(t, s.Set(ctx, &widgetprefs.Record{Key: "k", Value: value}))
	value[2] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":true}`, string(got.Value))

	got.Value[2] = 'Y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":true}`, string(again.Value))
}
