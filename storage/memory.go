package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/CreativeUnicorns/widgetprefs"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This is useful for testing or single-process deployments where losing
// preferences on restart is acceptable.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*widgetprefs.Record
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*widgetprefs.Record),
	}
}

// Get returns a copy of the record stored under key, or widgetprefs.ErrNotFound.
func (s *MemoryStorage) Get(_ context.Context, key string) (*widgetprefs.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, widgetprefs.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Set stores a copy of rec, replacing any previous value.
func (s *MemoryStorage) Set(_ context.Context, rec *widgetprefs.Record) error {
	if rec == nil || rec.Key == "" {
		return widgetprefs.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = cloneRecord(rec)
	return nil
}

// Delete removes key. It returns widgetprefs.ErrNotFound if nothing was stored.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return widgetprefs.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns the stored keys beginning with prefix, sorted.
func (s *MemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op for MemoryStorage as there are no external resources to release.
func (s *MemoryStorage) Close() error {
	return nil
}

func cloneRecord(rec *widgetprefs.Record) *widgetprefs.Record {
	return &widgetprefs.Record{
		Key:       rec.Key,
		Value:     slices.Clone(rec.Value),
		UpdatedAt: rec.UpdatedAt,
	}
}
