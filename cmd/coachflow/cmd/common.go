package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/config"
	"github.com/templui/coachflow/internal/logger"
)

// operatorActor attributes CLI-initiated workflow changes in history.
const operatorActor = "cli"

// withApp loads configuration, builds the app and hands it to fn. The
// context is cancelled on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, cfg.AppEnv)
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
