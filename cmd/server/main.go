package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/config"
	"github.com/templui/coachflow/internal/logger"
	"github.com/templui/coachflow/internal/server"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, cfg.AppEnv)
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	err = server.Run(ctx, app)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
