package main

import (
	"context"
	"fmt"
	"os"

	"pennypal/internal/amqp"
	"pennypal/internal/backend"
	"pennypal/internal/cli"
	"pennypal/internal/log"
	"pennypal/internal/services"
	"pennypal/internal/sheets"
	gsheet "pennypal/internal/sheets/google"
	"pennypal/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting pennypal-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid storage configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	store := result.Store

	// Optional spreadsheet export; a nil interface disables it.
	var exporter sheets.Exporter
	if cfg.SheetsExportEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			ActivitySheet:   cfg.GoogleSheetName,
			ExpensesSheet:   cfg.GoogleExpensesSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	categories := services.NewCategoryService(store, nil)
	syncWorker := worker.NewSyncWorker(
		services.NewActivityService(store),
		services.NewExpenseService(store, categories, nil),
		exporter,
		logger,
	)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Storage close error", log.FieldError, err)
		}
	})

	if err := syncWorker.Run(ctx, amqpClient); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	m := syncWorker.GetMetrics()
	logger.Info("Worker shutdown complete",
		"processed", m.Processed,
		"exported", m.Exported,
		"export_errors", m.ExportErrors)
}
