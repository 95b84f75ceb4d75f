package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/scheduler"
)

func SweepCmd() *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Fire all due workflow actions",
		Long: `Fire all due workflow actions once and print the per-client results.
With --every the sweep runs on that cron schedule until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				if every != "" {
					return runScheduled(ctx, a, every)
				}
				return runSweep(ctx, a)
			})
		},
	}

	cmd.Flags().StringVar(&every, "every", "", `cron schedule, e.g. "@every 5m" or "*/10 * * * *"`)
	return cmd
}

func runSweep(ctx context.Context, a *app.App) error {
	if a.Cfg.SweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Cfg.SweepTimeout)
		defer cancel()
	}

	results, err := a.WorkflowService.Sweep(ctx)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"processed": len(results),
		"results":   results,
	})
}

func runScheduled(ctx context.Context, a *app.App, spec string) error {
	sched, err := scheduler.New(spec, a.Cfg.SweepTimeout, a.WorkflowService)
	if err != nil {
		return err
	}

	fmt.Printf("Sweeping on %q, press Ctrl+C to stop\n", spec)
	sched.Start()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)
	return nil
}
