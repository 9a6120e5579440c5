package main

import (
	"context"
	"errors"
	"net"
	"os"

	"golang.org/x/sync/errgroup"

	"spesebot/internal/backend"
	"spesebot/internal/bot"
	"spesebot/internal/cli"
	apphttp "spesebot/internal/http"
	applog "spesebot/internal/log"
	"spesebot/internal/pending"
	"spesebot/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.InfoContext(ctx, "Starting spesebot", "backend", cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	sink, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize record sink", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if sink.Cleanup != nil {
		defer func() {
			if err := sink.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	tg, err := telegram.New(telegram.Config{
		Token: cfg.TelegramToken,
		Debug: cfg.TelegramDebug,
	}, logger)
	if err != nil {
		logger.Error("Failed to start Telegram client", applog.FieldError, err)
		os.Exit(1)
	}

	store := pending.New()
	controller := bot.NewController(tg, sink.Writer, bot.WithStore(store))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := tg.Run(gctx, controller); err != nil {
			return err
		}
		if gctx.Err() == nil {
			return errors.New("telegram update stream closed")
		}
		return nil
	})
	if cfg.HTTPPort != "" {
		srv := apphttp.NewServer(net.JoinHostPort("", cfg.HTTPPort), logger, store)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("spesebot stopped with error", applog.FieldError, err, applog.FieldOperation, applog.OpShutdown)
		os.Exit(1)
	}
	logger.Info("spesebot stopped", applog.FieldPending, store.Len())
}
