package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spesebot/internal/amqp"
	"spesebot/internal/backend"
	"spesebot/internal/cli"
	applog "spesebot/internal/log"
	"spesebot/internal/services"
	gsheet "spesebot/internal/sheets/google"
	"spesebot/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateWorkerConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.InfoContext(ctx, "Starting spesebot-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	sheetsClient, err := gsheet.New(ctx, backendCfg.GoogleConfig())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize)

	logger.InfoContext(ctx, "Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.LogError(ctx, "Failed startup sync check", err, applog.OpStartup, nil)
	}

	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{PollInterval: cfg.SyncInterval})
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", applog.FieldError, err)
		os.Exit(1)
	}

	err = amqpClient.ConsumeRecordSync(ctx, syncWorker.HandleSyncMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError(ctx, "Message consumption failed", err, applog.OpSync, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Sync processor did not stop cleanly", applog.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
