// Package widgetprefs defines the core types used by the visibility preference Manager.
package widgetprefs

import (
	"time"
)

const (
	// DefaultNamespace prefixes every persisted key.
	DefaultNamespace = "dashboard-visibility"
	// DefaultProfile is used when a caller passes an empty profile ID.
	DefaultProfile = "default"
	// DefaultCacheTTL bounds how long a cached visibility map is trusted.
	DefaultCacheTTL = 24 * time.Hour
)

// Record is one persisted key-value entry as seen by a Storage backend.
type Record struct {
	// Key is "<namespace>:<profile>".
	Key string `json:"key"`
	// Value is the encoded visibility map, possibly encrypted.
	Value []byte `json:"value"`
	// UpdatedAt is set by the Manager on every write.
	UpdatedAt time.Time `json:"updated_at"`
}

// Config holds the internal configuration for a Manager instance.
// It is populated by applying functional Options when a Manager is created with New().
type Config struct {
	storage   Storage
	cache     Cache
	cacheTTL  time.Duration
	logger    Logger
	encryptor Encryptor
	metrics   MetricsRecorder
	namespace string
}

// Option configures a Manager.
type Option func(*Config)

// WithStorage sets the Storage backend the Manager persists visibility maps to.
// Without it the Manager keeps state in memory only.
func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.storage = s
	}
}

// WithCache puts a Cache in front of the Storage backend. Optional.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithLogger sets the Logger. The default writes JSON to os.Stderr.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithEncryption encrypts persisted values with e.
func WithEncryption(e Encryptor) Option {
	return func(c *Config) {
		c.encryptor = e
	}
}

// WithMetrics sets the MetricsRecorder. The default discards everything.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Config) {
		c.metrics = m
	}
}

// WithNamespace overrides DefaultNamespace. An empty namespace is ignored.
func WithNamespace(ns string) Option {
	return func(c *Config) {
		if ns != "" {
			c.namespace = ns
		}
	}
}
