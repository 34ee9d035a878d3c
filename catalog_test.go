package widgetprefs

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)
	require.NotZero(t, reg.Len())

	w, ok := reg.Lookup("ai-sentiment")
	require.True(t, ok)
	assert.True(t, w.DefaultVisible)
	assert.Equal(t, GridSize{W: 4, H: 2}, w.Size)

	burn, ok := reg.Lookup("gpu-cluster-burning")
	require.True(t, ok)
	assert.False(t, burn.DefaultVisible)

	payload, ok := burn.Payload.(map[string]any)
	require.True(t, ok, "payload should decode as a map, got %T", burn.Payload)
	assert.Equal(t, "BurnRateCard", payload["component"])
}

func TestNewDefaultRegistry_FreshInstances(t *testing.T) {
	r1, err := NewDefaultRegistry()
	require.NoError(t, err)
	r2, err := NewDefaultRegistry()
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)
}

func TestLoadCatalog_JSON(t *testing.T) {
	widgets, err := LoadCatalog(strings.NewReader(`{"widgets": [
		{"id": "a", "title": "A", "default_visible": true, "size": {"w": 2, "h": 1}},
		{"id": "b", "title": "B"}
	]}`))
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "a", widgets[0].ID)
	assert.True(t, widgets[0].DefaultVisible)
	assert.Equal(t, GridSize{W: 2, H: 1}, widgets[0].Size)
	assert.False(t, widgets[1].DefaultVisible)
}

func TestLoadCatalog_Errors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader("widgets:\n  - id: a\n    visible: true\n"))
		assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader(""))
		assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	})
	t.Run("duplicate ids", func(t *testing.T) {
		_, err := NewRegistryFromCatalog(strings.NewReader("widgets:\n  - id: a\n  - id: a\n"))
		assert.True(t, errors.Is(err, ErrDuplicateWidget), "got %v", err)
	})
}
