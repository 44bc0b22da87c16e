package commands

import (
	"context"
	"fmt"

	"github.com/CollinsRutto/realtorgpt/internal/config"
	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/spf13/cobra"
)

// NewQuotaCmd creates the quota configuration command with list and set subcommands.
func NewQuotaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Manage anonymous chat quota configuration",
		Long:  "List or update the daily chat quota for unauthenticated users (stored in database).",
	}
	cmd.AddCommand(newQuotaListCmd())
	cmd.AddCommand(newQuotaSetCmd())
	return cmd
}

func newQuotaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current quota configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()
			repo := database.NewQuotaConfigRepository(db)
			c, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get quota config: %w", err)
			}
			if c == nil {
				fmt.Println("No quota configuration in database. Use 'quota set' to add one.")
				return nil
			}
			fmt.Println("Anonymous chat quota configuration:")
			fmt.Printf("  Daily limit: %d\n", c.DailyLimit)
			fmt.Printf("  Updated: %s\n", c.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newQuotaSetCmd() *cobra.Command {
	var dailyLimit int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set quota configuration",
		Long:  "Update the daily chat quota for unauthenticated users. Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dailyLimit <= 0 {
				return fmt.Errorf("--daily-limit must be a positive number")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()
			repo := database.NewQuotaConfigRepository(db)
			c := &models.QuotaConfig{DailyLimit: dailyLimit}
			if err := repo.Set(context.Background(), c); err != nil {
				return fmt.Errorf("set quota config: %w", err)
			}
			fmt.Println("Quota configuration updated.")
			return nil
		},
	}
	cmd.Flags().IntVar(&dailyLimit, "daily-limit", 0, "Daily chat quota per anonymous IP (required)")
	return cmd
}
