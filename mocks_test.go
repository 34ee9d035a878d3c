package widgetprefs

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mu     sync.RWMutex
	data   map[string]*Record
	closed bool
	sets   int

	// Forced errors for failure-path tests.
	getErr  error
	setErr  error
	listErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data: make(map[string]*Record),
	}
}

func (m *MockStorage) Get(ctx context.Context, key string) (*Record, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.getErr != nil {
		return nil, m.getErr
	}

	rec, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *MockStorage) Set(ctx context.Context, rec *Record) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if m.setErr != nil {
		return m.setErr
	}

	m.data[rec.Key] = copyRecord(rec)
	m.sets++
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]string, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.listErr != nil {
		return nil, m.listErr
	}

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// put stores raw bytes, bypassing the Manager.
func (m *MockStorage) put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &Record{Key: key, Value: value, UpdatedAt: time.Now()}
}

// raw returns the stored bytes for key, or nil.
func (m *MockStorage) raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.data[key]; ok {
		return slices.Clone(rec.Value)
	}
	return nil
}

func (m *MockStorage) setCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

func (m *MockStorage) failSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

func (m *MockStorage) failGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func copyRecord(rec *Record) *Record {
	return &Record{Key: rec.Key, Value: slices.Clone(rec.Value), UpdatedAt: rec.UpdatedAt}
}

// MockCache implements the Cache interface for testing
type MockCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMockCache creates a new MockCache for testing.
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, _ = ctx.Deadline()
	_ = ttl // TTL is ignored in this mock implementation

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *MockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockCache) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("ERROR", msg, args...) }

// SetLevel records the attempt to set the log level for test verification.
func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, fmt.Sprintf("SET_LEVEL: %v", level))
}

func (m *MockLogger) record(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, formatMessage(level, msg, args...))
}

// contains reports whether any message has the given level prefix and substring.
func (m *MockLogger) contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.Messages {
		if strings.HasPrefix(msg, level+": ") && strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func formatMessage(level, msg string, args ...any) string {
	if len(args) > 0 {
		return fmt.Sprintf("%s: %s %v", level, msg, args)
	}
	return fmt.Sprintf("%s: %s", level, msg)
}

// MockMetrics implements MetricsRecorder for testing
type MockMetrics struct {
	mu           sync.Mutex
	Operations   map[string]int
	PersistFails map[string]int
	Recoveries   map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Operations:   make(map[string]int),
		PersistFails: make(map[string]int),
		Recoveries:   make(map[string]int),
	}
}

func (m *MockMetrics) ObserveOperation(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[op]++
}

func (m *MockMetrics) PersistFailed(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistFails[op]++
}

func (m *MockMetrics) StateRecovered(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recoveries[reason]++
}
