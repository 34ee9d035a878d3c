// Package main is the entry point for the widgetprefs-server application.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CreativeUnicorns/widgetprefs/api"
	"github.com/CreativeUnicorns/widgetprefs/internal/bootstrap"
	"github.com/CreativeUnicorns/widgetprefs/internal/config"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides server.listen)")
	flag.Parse()

	if err := run(*configPath, *listenAddr); err != nil {
		fmt.Fprintln(os.Stderr, "widgetprefs-server:", err)
		os.Exit(1)
	}
}

func run(configPath, listenAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	logger := app.Logger
	logger.Info("widgetprefs server starting up", "storage", cfg.Storage.Driver, "cache", cfg.Cache.Driver)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close backends", "error", err)
		}
	}()

	apiServer, err := api.NewServer(api.Config{
		ListenAddress:  cfg.Server.Listen,
		Manager:        app.Manager,
		Logger:         logger,
		MetricsHandler: app.MetricsHandler(),
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited gracefully")
	return nil
}
