package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"scorecard/internal/app/server"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(logger.Config{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
