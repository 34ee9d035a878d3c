// Package cache provides the caching backends that front visibility storage.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/CreativeUnicorns/widgetprefs"
)

// Supported driver names for Open.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var (
	_ widgetprefs.Cache = (*MemoryCache)(nil)
	_ widgetprefs.Cache = (*RedisCache)(nil)
)

// Config selects and configures a cache backend.
type Config struct {
	// Driver is none, memory or redis. Empty means none.
	Driver   string        `koanf:"driver"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// Open builds the cache named by cfg.Driver. It returns a nil Cache and nil
// error when caching is disabled.
func Open(ctx context.Context, cfg Config) (widgetprefs.Cache, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemoryCache(), nil
	case DriverRedis:
		if cfg.Addr == "" {
			return nil, fmt.Errorf("%w: redis: addr is required", widgetprefs.ErrInvalidInput)
		}
		c, err := NewRedisCacheContext(ctx, cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache driver %q", widgetprefs.ErrInvalidInput, cfg.Driver)
	}
}
