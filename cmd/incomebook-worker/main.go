package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"incomebook/internal/amqp"
	"incomebook/internal/backend"
	"incomebook/internal/config"
	"incomebook/internal/export"
	"incomebook/internal/ledger"
	"incomebook/internal/log"
	"incomebook/internal/sheets"
	gsheet "incomebook/internal/sheets/google"
	"incomebook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentWorker,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	logger.Info("Starting incomebook-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBucket(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Cleanup()

	dir, err := export.NewDirSink(cfg.ExportDir)
	if err != nil {
		logger.Error("Failed to prepare export directory", log.FieldError, err.Error(), "dir", cfg.ExportDir)
		os.Exit(1)
	}
	sinks := export.Sinks{dir}

	// Google Sheets is an optional second destination.
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		sinks = append(sinks, sheets.NewSink(client))
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	store := ledger.New(res.Bucket, logger)
	exportWorker := worker.NewExportWorker(export.NewExporter(store, logger), sinks, logger)

	err = amqpClient.ConsumeExportRequests(ctx, exportWorker.HandleExportRequest)
	stats := exportWorker.Stats()
	logger.Info("Worker stopped", "processed", stats.Processed, "failed", stats.Failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
}
