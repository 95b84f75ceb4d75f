package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/routes"
	"github.com/templui/coachflow/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

// Run serves the function endpoints and, when a schedule is configured, runs
// the sweep in process. It returns once ctx is cancelled and shutdown is done.
func Run(ctx context.Context, a *app.App) error {
	var sched *scheduler.Scheduler
	if a.Cfg.SweepSchedule != "" {
		var err error
		sched, err = scheduler.New(a.Cfg.SweepSchedule, a.Cfg.SweepTimeout, a.WorkflowService)
		if err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:              ":" + a.Cfg.Port,
		Handler:           routes.SetupRoutes(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", a.Cfg.Port, "env", a.Cfg.AppEnv, "url", "http://localhost:"+a.Cfg.Port)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}

	slog.Info("server stopped")
	return nil
}
