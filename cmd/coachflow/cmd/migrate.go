package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/config"
	"github.com/templui/coachflow/internal/db"
	"github.com/templui/coachflow/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, database *sqlx.DB) error {
				return db.RunMigrations(ctx, database.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, database *sqlx.DB) error {
				return db.MigrateDown(ctx, database.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, database *sqlx.DB) error {
				version, err := db.Version(ctx, database.DB, cfg.DBDriver)
				if err != nil {
					return fmt.Errorf("failed to read version: %w", err)
				}
				fmt.Println(version)
				return nil
			})
		},
	})

	return cmd
}

// withDB opens the store without app.New, which would migrate up implicitly.
func withDB(fn func(ctx context.Context, cfg *config.Config, database *sqlx.DB) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, cfg.AppEnv)
	defer logger.Flush()

	ctx := context.Background()
	conn, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(conn)
		if closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return fn(ctx, cfg, conn)
}
