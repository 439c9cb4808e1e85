// Command simonbin serves the industry record and coaching history engine
// for the regional forestry office.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simonbin/internal/advisory"
	"simonbin/internal/blob"
	"simonbin/internal/config"
	"simonbin/internal/core"
	"simonbin/internal/httpapi"
	"simonbin/internal/infra/persistence/postgres"
	"simonbin/internal/infra/persistence/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store core.RecordStore
	switch core.StorageDriver(cfg.Storage.Driver) {
	case core.StorageSQLite:
		sqliteStore, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Error("open sqlite store", "error", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("storage ready", "driver", cfg.Storage.Driver, "path", sqliteStore.Path())
	case core.StoragePostgres:
		pgStore, err := postgres.NewStore(cfg.Storage.PostgresDSN)
		if err != nil {
			logger.Error("open postgres store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
		logger.Info("storage ready", "driver", cfg.Storage.Driver)
	default:
		store = core.NewStore()
		logger.Info("storage ready", "driver", cfg.Storage.Driver)
	}

	blobStore, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		logger.Error("open blob store", "error", err)
		os.Exit(1)
	}
	logger.Info("blob storage ready", "driver", blobStore.Driver())

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		logger.Error("register metrics", "error", err)
		os.Exit(1)
	}

	svc := core.NewService(store,
		core.WithImageStore(blob.NewImages(blobStore)),
		core.WithMetricsRecorder(metrics))

	auth := httpapi.NewTokenAuth(cfg.Auth.Username, cfg.Auth.Password)

	opts := []httpapi.Option{
		httpapi.WithBlobStore(blobStore),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}
	if cfg.Gemini.APIKey != "" {
		advisor, err := advisory.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			logger.Error("init advisory", "error", err)
			os.Exit(1)
		}
		opts = append(opts, httpapi.WithAdvisor(advisor))
	} else {
		logger.Info("advisory disabled, no API key configured")
	}

	server := httpapi.NewServer(svc, auth, logger, opts...)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}
