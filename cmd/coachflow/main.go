package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/cmd/coachflow/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "coachflow",
		Short:         "Operate the coaching lifecycle engine",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.SweepCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TriggerCmd())
	rootCmd.AddCommand(cmd.EnrollCmd())
	rootCmd.AddCommand(cmd.EvaluateCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
