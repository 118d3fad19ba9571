package main

import (
	"context"
	"errors"
	"os"
	"time"

	"assistente/internal/amqp"
	"assistente/internal/backend"
	"assistente/internal/cli"
	applog "assistente/internal/log"
	"assistente/internal/services"
	"assistente/internal/sheets"
	gsheet "assistente/internal/sheets/google"
	sheetmem "assistente/internal/sheets/memory"
	"assistente/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting assistente-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		logger.Error("The worker needs the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// the worker only reads and marks entries, it never publishes
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer res.Close()

	var sheet sheets.EntryAppender
	if cfg.SheetsConfigured() {
		client, err := gsheet.NewClient(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		sheet = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		sheet = sheetmem.New()
		logger.Warn("Google Sheets not configured, mirroring to an in-memory sheet")
	}

	mirror := worker.NewMirrorWorker(res.Mirror, sheet, cfg.SyncBatchSize)

	logger.Info("Performing startup mirror check...")
	if err := mirror.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup mirror check", applog.FieldError, err)
	}

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer consumer.Close()

		go func() {
			err := consumer.ConsumeEntryRecorded(ctx, mirror.HandleEntryRecorded)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
			stop()
		}()
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep only")
	}

	sweep := services.NewSweepProcessor(mirror, services.SweepProcessorConfig{Interval: cfg.SyncInterval})
	if err := sweep.Start(ctx); err != nil {
		logger.Error("Failed to start sweep processor", applog.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sweep.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", applog.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
