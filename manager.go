// manager.go
package widgetprefs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Recovery reasons reported to MetricsRecorder.StateRecovered.
const (
	RecoveryMissing     = "missing"
	RecoveryCorrupt     = "corrupt"
	RecoveryUnavailable = "unavailable"
)

// Manager owns the visibility preferences of every profile it serves.
//
// Each profile's map is loaded once, then kept in memory; the in-memory copy
// is authoritative for the life of the Manager even when a write to storage
// fails. Mutations for one profile are serialized and persisted before they
// return. No method of the preference API returns an error: failures are
// logged and degrade to registry defaults or to best-effort persistence.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	config   *Config
	profiles map[string]*profileState
}

type profileState struct {
	mu         sync.Mutex
	visibility VisibilityMap

	// provisional is set while visibility holds defaults because storage could
	// not be read. Such a map is never persisted; the next load retries storage
	// and replays pending on top of what it finds.
	provisional bool
	pending     VisibilityMap
}

// New creates a Manager over reg. A nil reg is treated as an empty catalog.
func New(reg *Registry, opts ...Option) *Manager {
	if reg == nil {
		reg = MustNewRegistry()
	}
	cfg := &Config{
		cacheTTL:  DefaultCacheTTL,
		namespace: DefaultNamespace,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}
	if cfg.metrics == nil {
		cfg.metrics = noopMetrics{}
	}

	return &Manager{
		registry: reg,
		config:   cfg,
		profiles: make(map[string]*profileState),
	}
}

// Registry returns the catalog the Manager seeds from.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Load returns the profile's visibility map. On first use it reads persisted
// state; when none exists, or it cannot be parsed, the registry defaults are
// persisted and returned. When storage cannot be read the defaults are
// returned without persisting, and storage is tried again on the next call.
func (m *Manager) Load(ctx context.Context, profile string) VisibilityMap {
	start := time.Now()
	profile = normalizeProfile(profile)
	st := m.state(profile)

	st.mu.Lock()
	defer st.mu.Unlock()

	v := m.loadLocked(ctx, profile, st)
	m.config.metrics.ObserveOperation("load", time.Since(start))
	return v.Clone()
}

// Reload discards the in-memory copy and reads the profile again from
// storage, picking up writes made by other processes.
func (m *Manager) Reload(ctx context.Context, profile string) VisibilityMap {
	start := time.Now()
	profile = normalizeProfile(profile)
	st := m.state(profile)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.visibility, st.provisional, st.pending = nil, false, nil
	v := m.reloadLocked(ctx, profile, st, true)
	m.config.metrics.ObserveOperation("reload", time.Since(start))
	return v.Clone()
}

// Toggle flips the visibility of id and persists the whole map.
// An id without an entry flips from its resolved value (the widget's default,
// or visible for ids the registry does not know).
func (m *Manager) Toggle(ctx context.Context, profile, id string) VisibilityMap {
	return m.mutate(ctx, "toggle", profile, id, func(v VisibilityMap) {
		v[id] = !m.registry.IsVisible(v, id)
	})
}

// Set records an explicit visibility for id and persists the whole map.
func (m *Manager) Set(ctx context.Context, profile, id string, visible bool) VisibilityMap {
	return m.mutate(ctx, "set", profile, id, func(v VisibilityMap) {
		v[id] = visible
	})
}

// Reset replaces the profile's map with the registry defaults and persists it.
func (m *Manager) Reset(ctx context.Context, profile string) VisibilityMap {
	start := time.Now()
	profile = normalizeProfile(profile)
	st := m.state(profile)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.visibility, st.provisional, st.pending = m.registry.Defaults(), false, nil
	m.persist(ctx, "reset", profile, st.visibility)
	m.config.logger.Info("Reset widget visibility", "profile", profile)
	m.config.metrics.ObserveOperation("reset", time.Since(start))
	return st.visibility.Clone()
}

// VisibleWidgets returns the widgets the profile should render, in registry order.
func (m *Manager) VisibleWidgets(ctx context.Context, profile string) []Widget {
	return m.registry.Visible(m.Load(ctx, profile))
}

// Profiles lists every profile with persisted or in-memory state.
func (m *Manager) Profiles(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	if m.config.storage != nil {
		prefix := m.config.namespace + ":"
		keys, err := m.config.storage.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		for _, k := range keys {
			seen[strings.TrimPrefix(k, prefix)] = struct{}{}
		}
	}

	m.mu.Lock()
	for p, st := range m.profiles {
		st.mu.Lock()
		if st.visibility != nil {
			seen[p] = struct{}{}
		}
		st.mu.Unlock()
	}
	m.mu.Unlock()

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

// LastSaved reports when the profile's map was last written to storage.
// It returns ErrNotFound if nothing has been persisted.
func (m *Manager) LastSaved(ctx context.Context, profile string) (time.Time, error) {
	if m.config.storage == nil {
		return time.Time{}, ErrNotFound
	}
	rec, err := m.config.storage.Get(ctx, m.key(normalizeProfile(profile)))
	if err != nil {
		return time.Time{}, err
	}
	return rec.UpdatedAt, nil
}

// Close releases the cache and storage backends.
func (m *Manager) Close() error {
	var errs []error
	if m.config.cache != nil {
		if err := m.config.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if m.config.storage != nil {
		if err := m.config.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) mutate(ctx context.Context, op, profile, id string, apply func(VisibilityMap)) VisibilityMap {
	start := time.Now()
	profile = normalizeProfile(profile)
	st := m.state(profile)

	st.mu.Lock()
	defer st.mu.Unlock()

	v := m.loadLocked(ctx, profile, st)
	if id == "" {
		m.config.logger.Warn("Ignoring visibility change for empty widget id", "op", op, "profile", profile)
		return v.Clone()
	}
	if _, known := m.registry.Lookup(id); !known {
		m.config.logger.Debug("Visibility change for unregistered widget", "op", op, "profile", profile, "widget", id)
	}

	apply(v)
	if st.provisional {
		if st.pending == nil {
			st.pending = make(VisibilityMap)
		}
		st.pending[id] = v[id]
		m.config.logger.Warn("Storage unreadable, keeping visibility change in memory", "op", op, "profile", profile, "widget", id)
	} else {
		m.persist(ctx, op, profile, v)
	}
	m.config.metrics.ObserveOperation(op, time.Since(start))
	return v.Clone()
}

func (m *Manager) state(profile string) *profileState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.profiles[profile]
	if !ok {
		st = &profileState{}
		m.profiles[profile] = st
	}
	return st
}

// loadLocked must be called with st.mu held.
func (m *Manager) loadLocked(ctx context.Context, profile string, st *profileState) VisibilityMap {
	if st.visibility != nil && !st.provisional {
		return st.visibility
	}
	return m.reloadLocked(ctx, profile, st, st.provisional)
}

// reloadLocked reads persisted state into st. With fresh set the cache is
// skipped and storage is read directly.
func (m *Manager) reloadLocked(ctx context.Context, profile string, st *profileState, fresh bool) VisibilityMap {
	v, err := m.readPersisted(ctx, profile, fresh)
	dirty := false
	switch {
	case err == nil:
		dirty = m.registry.seed(v)
	case errors.Is(err, ErrNotFound):
		m.config.logger.Debug("No persisted visibility, seeding defaults", "profile", profile)
		m.config.metrics.StateRecovered(RecoveryMissing)
		v, dirty = m.registry.Defaults(), true
	case errors.Is(err, ErrCorruptState):
		m.config.logger.Warn("Persisted visibility is corrupt, restoring defaults", "profile", profile, "error", err)
		m.config.metrics.StateRecovered(RecoveryCorrupt)
		v, dirty = m.registry.Defaults(), true
	default:
		m.config.logger.Error("Failed to read persisted visibility, using defaults", "profile", profile, "error", err)
		m.config.metrics.StateRecovered(RecoveryUnavailable)
		if st.visibility == nil {
			st.visibility = m.registry.Defaults()
		}
		st.provisional = true
		return st.visibility
	}

	for id, visible := range st.pending {
		if cur, ok := v[id]; !ok || cur != visible {
			v[id] = visible
			dirty = true
		}
	}
	if dirty {
		m.persist(ctx, "load", profile, v)
	}

	st.visibility, st.provisional, st.pending = v, false, nil
	return v
}

func (m *Manager) readPersisted(ctx context.Context, profile string, fresh bool) (VisibilityMap, error) {
	if m.config.storage == nil {
		return nil, ErrNotFound
	}
	key := m.key(profile)

	if m.config.cache != nil && !fresh {
		if data, err := m.config.cache.Get(ctx, key); err == nil {
			if v, err := m.decode(data); err == nil {
				return v, nil
			}
			m.deleteFromCache(ctx, key)
		}
	}

	rec, err := m.config.storage.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	v, err := m.decode(rec.Value)
	if err != nil {
		return nil, err
	}
	m.setToCache(ctx, key, rec.Value)
	return v, nil
}

// persist writes v as one record. Failures are logged; the caller's
// in-memory state is left as is.
func (m *Manager) persist(ctx context.Context, op, profile string, v VisibilityMap) {
	if m.config.storage == nil {
		return
	}
	key := m.key(profile)

	data, err := m.encode(v)
	if err != nil {
		m.config.logger.Error("Failed to encode visibility", "op", op, "profile", profile, "error", err)
		m.config.metrics.PersistFailed(op)
		return
	}

	rec := &Record{Key: key, Value: data, UpdatedAt: time.Now().UTC()}
	if err := m.config.storage.Set(ctx, rec); err != nil {
		m.config.logger.Error("Failed to persist visibility", "op", op, "profile", profile, "error", err)
		m.config.metrics.PersistFailed(op)
		m.deleteFromCache(ctx, key)
		return
	}
	m.setToCache(ctx, key, data)
}

func (m *Manager) encode(v VisibilityMap) ([]byte, error) {
	data, err := EncodeVisibility(v)
	if err != nil {
		return nil, err
	}
	if m.config.encryptor == nil {
		return data, nil
	}
	ciphertext, err := m.config.encryptor.Encrypt(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt: %v", ErrSerialization, err)
	}
	return []byte(ciphertext), nil
}

func (m *Manager) decode(data []byte) (VisibilityMap, error) {
	if m.config.encryptor != nil {
		plaintext, err := m.config.encryptor.Decrypt(string(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decrypt: %v", ErrCorruptState, err)
		}
		data = []byte(plaintext)
	}
	return DecodeVisibility(data)
}

func (m *Manager) key(profile string) string {
	return m.config.namespace + ":" + profile
}

func (m *Manager) setToCache(ctx context.Context, key string, data []byte) {
	if m.config.cache == nil {
		return
	}
	if err := m.config.cache.Set(ctx, key, data, m.config.cacheTTL); err != nil {
		m.config.logger.Error("Failed to cache visibility", "key", key, "error", err)
	}
}

func (m *Manager) deleteFromCache(ctx context.Context, key string) {
	if m.config.cache == nil {
		return
	}
	if err := m.config.cache.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		m.config.logger.Error("Failed to delete visibility from cache", "key", key, "error", err)
	}
}
