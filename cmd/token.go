package cmd

import (
	"encoding/json"
	"time"

	"github.com/Eursukkul/gym-reservation/config"
	"github.com/Eursukkul/gym-reservation/internal/auth"
	"github.com/Eursukkul/gym-reservation/internal/dto"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var userID, role string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if ttl == 0 {
				ttl = cfg.TokenTTL
			}

			token, exp, err := auth.IssueToken(cfg.JWTSecret, userID, role, ttl)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.TokenResponse{Token: token, ExpiresAt: exp})
		},
	}

	c.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	c.Flags().StringVar(&role, "role", "", `role claim, "admin" for staff`)
	c.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = c.MarkFlagRequired("user")
	return c
}
