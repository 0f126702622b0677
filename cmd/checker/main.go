// Package main запускает чекер API клуба: прогон проверок по расписанию
// или одиночный прогон и сервер отчётов.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	checkerapp "github.com/magabrotheeeer/gymclub-checker/internal/app/checker"
	"github.com/magabrotheeeer/gymclub-checker/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting gymclub-checker",
		slog.String("env", cfg.Env),
		slog.String("target", cfg.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := checkerapp.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, checkerapp.ErrChecksFailed) {
			logger.Error("check run finished with failures")
		} else {
			logger.Error("app stopped with error", slog.Any("err", err))
		}
		os.Exit(1)
	}

	logger.Info("gymclub-checker stopped gracefully")
}
