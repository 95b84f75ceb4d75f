package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/templui/coachflow/internal/service"
)

// Sweeper runs one due sweep.
type Sweeper interface {
	Sweep(ctx context.Context) ([]service.SweepResult, error)
}

// Scheduler fires the workflow sweep on a cron schedule. A sweep that is
// still running when the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
}

// New parses spec (standard five-field cron or descriptors such as
// "@every 5m") and prepares the schedule without starting it.
func New(spec string, timeout time.Duration, sweeper Sweeper) (*Scheduler, error) {
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		sweeper: sweeper,
		timeout: timeout,
	}

	_, err := s.cron.AddFunc(spec, s.RunOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("sweep scheduler started")
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("sweep still running at shutdown")
	}
}

// RunOnce performs a single sweep bounded by the configured timeout.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results, err := s.sweeper.Sweep(ctx)
	if err != nil {
		slog.Error("scheduled sweep failed", "error", err)
		return
	}

	slog.Debug("scheduled sweep done", "processed", len(results))
}

// slogLogger routes cron's own logging through slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
