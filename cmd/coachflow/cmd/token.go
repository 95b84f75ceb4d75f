package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/coachflow/internal/config"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/service"
)

func TokenCmd() *cobra.Command {
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a bearer token for calling the function endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			expiry := cfg.JWTExpiry
			if ttl > 0 {
				expiry = ttl
			}

			auth := service.NewAuthService(cfg.JWTSecret, expiry)
			token, err := auth.GenerateJWT(model.Identity{Subject: args[0], Role: model.Role(role)})
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "admin, client or scheduler")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY)")
	return cmd
}
