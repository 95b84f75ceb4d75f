package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/app"
)

func EvaluateCmd() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "evaluate <client-id>",
		Short: "Recompute achievement progress for a client and award what is met",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				result, err := a.AchievementService.Evaluate(ctx, args[0], action)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "action hint, e.g. meal_logged")
	return cmd
}
