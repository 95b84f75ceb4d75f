package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/model"
)

func TriggerCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "trigger <client-id> <stage>",
		Short: "Move a client's workflow to a stage and reschedule its next action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				result, err := a.WorkflowService.Trigger(ctx, args[0], args[1], actor)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().StringVar(&actor, "as", operatorActor, "identity recorded in workflow history")
	return cmd
}

func EnrollCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "enroll <client-id> <consultation|hundred_days>",
		Short: "Start the onboarding workflow for a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				state, err := a.WorkflowService.Enroll(ctx, args[0], model.ServiceType(args[1]), actor)
				if err != nil {
					return err
				}
				return printJSON(state)
			})
		},
	}

	cmd.Flags().StringVar(&actor, "as", operatorActor, "identity recorded in workflow history")
	return cmd
}
