// Package config loads widgetprefs binaries' settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/CreativeUnicorns/widgetprefs"
	"github.com/CreativeUnicorns/widgetprefs/cache"
	"github.com/CreativeUnicorns/widgetprefs/storage"
)

// FileName is the name searched for in the working directory.
const FileName = "widgetprefs.toml"

// Config is the full binary configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Dashboard  DashboardConfig  `koanf:"dashboard"`
	Storage    storage.Config   `koanf:"storage"`
	Cache      cache.Config     `koanf:"cache"`
	Log        LogConfig        `koanf:"log"`
	Encryption EncryptionConfig `koanf:"encryption"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type ServerConfig struct {
	Listen string `koanf:"listen"` // e.g. ":8080"
}

type DashboardConfig struct {
	Namespace string `koanf:"namespace"` // persisted key prefix (default: dashboard-visibility)
	Catalog   string `koanf:"catalog"`   // YAML catalog path; empty uses the built-in catalog
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text or zap
}

type EncryptionConfig struct {
	// Enabled reads the key from WIDGETPREFS_ENCRYPTION_KEY.
	Enabled bool `koanf:"enabled"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Listen: ":8080"},
		Dashboard: DashboardConfig{Namespace: widgetprefs.DefaultNamespace},
		Storage:   storage.Config{Driver: storage.DriverFile},
		Cache:     cache.Config{Driver: cache.DriverNone, TTL: widgetprefs.DefaultCacheTTL},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the default search path, then explicit if non-empty.
// Later files override earlier ones. An explicit path must exist.
func Load(explicit string) (*Config, error) {
	paths := SearchPaths()
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, explicit)
	}
	return LoadFiles(paths...)
}

// SearchPaths lists the implicit config locations in priority order (last wins).
func SearchPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "widgetprefs", "config.toml"),
		FileName,
	}
}

// LoadFiles merges every existing file in paths over Default.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Dashboard.Catalog = expandPath(cfg.Dashboard.Catalog)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component accepts.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Format {
	case "json", "text", "zap":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want json, text or zap", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite, storage.DriverPostgres, storage.DriverS3:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	switch c.Cache.Driver {
	case "", cache.DriverNone, cache.DriverMemory, cache.DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("cache.driver %q is not supported", c.Cache.Driver))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: config: %w", widgetprefs.ErrInvalidInput, err)
	}
	return nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
