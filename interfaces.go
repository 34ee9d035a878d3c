// Package widgetprefs defines interfaces for storage, caching, encryption and metrics used by the Manager.
package widgetprefs

import (
	"context"
	"time"
)

// Storage defines the methods required for a key-value storage backend.
// Each visibility map is persisted as one Record; there are no partial writes.
type Storage interface {
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) error
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Cache defines the methods required for a caching backend.
// Get returns ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Encryptor encrypts persisted payloads at rest.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// MetricsRecorder receives operational events from the Manager.
type MetricsRecorder interface {
	// ObserveOperation records a completed load, toggle, set or reset.
	ObserveOperation(op string, d time.Duration)
	// PersistFailed records a write that did not reach storage.
	PersistFailed(op string)
	// StateRecovered records a fallback to registry defaults, by reason
	// ("missing", "corrupt" or "unavailable").
	StateRecovered(reason string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, time.Duration) {}
func (noopMetrics) PersistFailed(string)                   {}
func (noopMetrics) StateRecovered(string)                  {}
