package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/CollinsRutto/realtorgpt/internal/config"
	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command, which prints every runtime
// configuration stored in the database.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all runtime configuration",
		Long:  "List CORS, rate limit, and quota configuration stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx := context.Background()

			corsCfg, err := database.NewCorsConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get cors config: %w", err)
			}
			if corsCfg == nil {
				fmt.Println("CORS: not configured (falls back to FRONTEND_URL)")
			} else {
				fmt.Printf("CORS: origins=%s allow_credentials=%v max_age=%d\n",
					corsCfg.AllowedOrigins, corsCfg.AllowCredentials, corsCfg.MaxAge)
			}

			rlCfg, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get ratelimit config: %w", err)
			}
			if rlCfg == nil {
				fmt.Println("Rate limit: not configured (built-in default)")
			} else {
				fmt.Printf("Rate limit: %s\n", rlCfg.Rate)
			}

			quotaCfg, err := database.NewQuotaConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get quota config: %w", err)
			}
			if quotaCfg == nil {
				fmt.Println("Anonymous chat quota: not configured (built-in default)")
			} else {
				fmt.Printf("Anonymous chat quota: %d per day\n", quotaCfg.DailyLimit)
			}

			return nil
		},
	}

	return cmd
}
