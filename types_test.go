package widgetprefs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaults(t *testing.T) {
	m := New(MustNewRegistry())

	assert.Equal(t, DefaultCacheTTL, m.config.cacheTTL)
	assert.Equal(t, DefaultNamespace, m.config.namespace)
	assert.NotNil(t, m.config.logger)
	assert.IsType(t, noopMetrics{}, m.config.metrics)
	assert.Nil(t, m.config.storage)
	assert.Nil(t, m.config.cache)
	assert.Nil(t, m.config.encryptor)
}

func TestOptions(t *testing.T) {
	store := NewMockStorage()
	cache := NewMockCache()
	logger := &MockLogger{}
	metrics := NewMockMetrics()
	enc, err := NewEncryptionAdapterWithKey([]byte(testKey))
	assert.NoError(t, err)

	m := New(MustNewRegistry(),
		WithStorage(store),
		WithCache(cache),
		WithCacheTTL(time.Minute),
		WithLogger(logger),
		WithMetrics(metrics),
		WithEncryption(enc),
		WithNamespace("ops"),
	)

	assert.Same(t, store, m.config.storage)
	assert.Same(t, cache, m.config.cache)
	assert.Equal(t, time.Minute, m.config.cacheTTL)
	assert.Same(t, logger, m.config.logger)
	assert.Same(t, metrics, m.config.metrics)
	assert.Same(t, enc, m.config.encryptor)
	assert.Equal(t, "ops", m.config.namespace)
	assert.Equal(t, "ops:alice", m.key("alice"))
}

func TestWithNamespaceIgnoresEmpty(t *testing.T) {
	m := New(MustNewRegistry(), WithNamespace(""))
	assert.Equal(t, DefaultNamespace, m.config.namespace)
}
