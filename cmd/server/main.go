package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/gigmarket/api"
	dbfs "github.com/garnizeh/gigmarket/db"
	"github.com/garnizeh/gigmarket/internal/config"
	"github.com/garnizeh/gigmarket/internal/db"
	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/internal/metrics"
	"github.com/garnizeh/gigmarket/internal/notify"
	"github.com/garnizeh/gigmarket/internal/tasks"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("invalid log level", slog.Any("err", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting gigmarket server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open DB", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("error closing DB", slog.Any("err", err))
		}
	}()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			logger.Error("migrations failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	// Notification outbox
	var events market.EventSink = market.NopSink{}
	var pool *tasks.WorkerPool
	if cfg.Outbox.Enabled {
		taskRepo := tasks.NewRepository(database)
		events = tasks.NewOutbox(taskRepo, cfg.Outbox.MaxAttempts)
		notifier := notify.New(notify.LogSender{Logger: logger}, logger)
		pool = tasks.NewWorkerPool(taskRepo, notifier.Handlers(), logger, tasks.PoolOptions{
			Workers:      cfg.Outbox.Workers,
			PollInterval: cfg.Outbox.PollInterval,
			Lease:        cfg.Outbox.Lease,
			Observer:     metrics.RecordTask,
		})
		pool.Start(ctx)
	}

	handler := api.SetupRoutes(ctx, cfg, version, buildTime, database, metrics.CountingSink{Next: events})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", slog.Any("err", err))
		}
	}

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	if pool != nil {
		pool.Stop()
	}

	logger.Info("server exited")
}
