package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/server"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the function endpoints and run the sweep schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				return server.Run(ctx, a)
			})
		},
	}
}
