package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/CreativeUnicorns/widgetprefs"
)

const (
	appName       = "widgetprefs"
	fileExtension = ".json"
)

// DefaultDir returns the per-user data directory used by FileStorage.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, appName, "visibility")
}

// FileStorage keeps one JSON file per key under a directory, the on-disk
// counterpart of a browser's localStorage entry.
type FileStorage struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStorage creates dir if needed and returns a FileStorage rooted there.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: file: directory is required", widgetprefs.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file: failed to create directory %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the directory the storage writes to.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Get reads the record stored under key.
func (s *FileStorage) Get(_ context.Context, key string) (*widgetprefs.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, widgetprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file: failed to read %q: %w", key, err)
	}

	var rec widgetprefs.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Hand the raw bytes up so the caller can treat them as corrupt state.
		return &widgetprefs.Record{Key: key, Value: data}, nil
	}
	rec.Key = key
	return &rec, nil
}

// Set writes rec atomically via a temporary file and rename.
func (s *FileStorage) Set(_ context.Context, rec *widgetprefs.Record) error {
	if rec == nil || rec.Key == "" {
		return widgetprefs.ErrInvalidInput
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: file: %v", widgetprefs.ErrSerialization, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file: failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: failed to write %q: %w", rec.Key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: failed to write %q: %w", rec.Key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.Key)); err != nil {
		return fmt.Errorf("file: failed to replace %q: %w", rec.Key, err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return widgetprefs.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("file: failed to delete %q: %w", key, err)
	}
	return nil
}

// List returns the stored keys beginning with prefix, sorted.
func (s *FileStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("file: failed to list %s: %w", s.dir, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExtension) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, fileExtension))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; every operation opens and closes its own file.
func (s *FileStorage) Close() error {
	return nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+fileExtension)
}
