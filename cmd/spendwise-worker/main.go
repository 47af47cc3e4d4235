package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/amqp"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage"
	"spendwise/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
		JSON:      cfg.LogJSON,
	})
	applog.SetDefault(logger)

	logger.Info("Starting spendwise-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	importWorker := worker.NewImportWorker(repo, services.NewImportService(repo))
	periodWorker := worker.NewPeriodWorker(repo, services.NewPeriodMonitor(repo))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Queued transaction batches, when a broker is configured.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeTransactionBatches(gctx, func(msg *amqp.TransactionBatchMessage) error {
				return importWorker.HandleBatch(gctx, msg)
			})
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
		logger.Info("Consuming import queue", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Import queue disabled - no AMQP_URL provided")
	}

	// Daily period sweep.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PeriodCheckSchedule, func() {
		if err := periodWorker.Sweep(gctx); err != nil {
			logger.Error("Period sweep failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid period check schedule", "schedule", cfg.PeriodCheckSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("Period sweep scheduled", "schedule", cfg.PeriodCheckSchedule)

	// Run one sweep at startup so a long-stopped worker catches up.
	if err := periodWorker.Sweep(ctx); err != nil {
		logger.Error("Startup period sweep failed", "error", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-gctx.Done():
		logger.Info("Worker context cancelled")
	}

	cancel()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Error("Worker exited with error", "error", err)
			os.Exit(1)
		}
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
