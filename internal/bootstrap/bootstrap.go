// Package bootstrap turns a loaded configuration into a wired Manager.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CreativeUnicorns/widgetprefs"
	"github.com/CreativeUnicorns/widgetprefs/cache"
	"github.com/CreativeUnicorns/widgetprefs/internal/config"
	"github.com/CreativeUnicorns/widgetprefs/metrics"
	"github.com/CreativeUnicorns/widgetprefs/storage"
)

// App bundles the Manager with the pieces a binary needs around it.
type App struct {
	Manager *widgetprefs.Manager
	Logger  widgetprefs.Logger
	// Metrics is nil unless metrics are enabled.
	Metrics *metrics.Recorder

	zap *zap.Logger
}

// MetricsHandler returns the /metrics handler, or nil when metrics are disabled.
func (a *App) MetricsHandler() http.Handler {
	if a.Metrics == nil {
		return nil
	}
	return a.Metrics.Handler()
}

// Close closes the Manager's backends and flushes buffered logs.
func (a *App) Close() error {
	err := a.Manager.Close()
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	return err
}

// New builds an App from cfg. Log output goes to w; nil means os.Stderr.
func New(ctx context.Context, cfg *config.Config, w io.Writer) (*App, error) {
	if w == nil {
		w = os.Stderr
	}
	app := &App{}

	logger, z, err := NewLogger(cfg.Log, w)
	if err != nil {
		return nil, err
	}
	app.Logger, app.zap = logger, z

	reg, err := loadRegistry(cfg.Dashboard.Catalog)
	if err != nil {
		return nil, err
	}

	opts := []widgetprefs.Option{
		widgetprefs.WithLogger(logger),
		widgetprefs.WithNamespace(cfg.Dashboard.Namespace),
		widgetprefs.WithCacheTTL(cfg.Cache.TTL),
	}

	if cfg.Encryption.Enabled {
		enc, err := widgetprefs.NewEncryptionAdapter()
		if err != nil {
			return nil, fmt.Errorf("encryption: %w", err)
		}
		opts = append(opts, widgetprefs.WithEncryption(enc))
	}

	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec, err := metrics.NewRecorder(promReg)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		app.Metrics = rec
		opts = append(opts, widgetprefs.WithMetrics(rec))
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	opts = append(opts, widgetprefs.WithStorage(store))

	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	if c != nil {
		opts = append(opts, widgetprefs.WithCache(c))
	}

	app.Manager = widgetprefs.New(reg, opts...)
	logger.Debug("Manager ready",
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Driver,
		"widgets", reg.Len(),
		"encrypted", cfg.Encryption.Enabled,
	)
	return app, nil
}

// NewLogger builds the Logger selected by cfg.Format. The returned zap
// logger is non-nil only for the zap format and should be synced on exit.
func NewLogger(cfg config.LogConfig, w io.Writer) (widgetprefs.Logger, *zap.Logger, error) {
	var (
		logger widgetprefs.Logger
		z      *zap.Logger
	)
	switch cfg.Format {
	case "", "json":
		logger = widgetprefs.NewJSONLogger(w)
	case "text":
		logger = widgetprefs.NewTextLogger(w)
	case "zap":
		level := zap.NewAtomicLevel()
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		z = zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
		logger = widgetprefs.NewZapLogger(z, level)
	default:
		return nil, nil, fmt.Errorf("%w: unknown log format %q", widgetprefs.ErrInvalidInput, cfg.Format)
	}
	logger.SetLevel(widgetprefs.ParseLogLevel(cfg.Level))
	return logger, z, nil
}

func loadRegistry(path string) (*widgetprefs.Registry, error) {
	if path == "" {
		return widgetprefs.NewDefaultRegistry()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	reg, err := widgetprefs.NewRegistryFromCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return reg, nil
}
