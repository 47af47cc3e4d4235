package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendwise/internal/amqp"
	"spendwise/internal/config"
	"spendwise/internal/export/sheets"
	apphttp "spendwise/internal/http"
	applog "spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
		JSON:      cfg.LogJSON,
	})
	applog.SetDefault(logger)

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

	// Archive export to Google Sheets is optional.
	var exporter services.ArchiveExporter
	if cfg.SheetsSpreadsheetID != "" {
		sheetsExporter, err := sheets.New(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Archive export to Google Sheets enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Archive export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// The import queue is optional as well; without a broker the import
	// endpoint always runs synchronously.
	var publisher apphttp.BatchPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Import queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	archiver := services.NewArchiver(repo, exporter)
	importer := services.NewImportService(repo)
	monitor := services.NewPeriodMonitor(repo)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ImportMaxBatch:     cfg.ImportMaxBatch,
	}, repo, archiver, importer, monitor, publisher)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting spendwise server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
