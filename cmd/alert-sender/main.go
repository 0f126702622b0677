// Package main запускает воркер почтовых оповещений о провалах проверок.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	alertsenderapp "github.com/magabrotheeeer/gymclub-checker/internal/app/alertsender"
	"github.com/magabrotheeeer/gymclub-checker/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting alert sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := alertsenderapp.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize alert sender app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("alert sender app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("alert sender stopped gracefully")
}
