package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CollinsRutto/realtorgpt/internal/config"
	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/middleware"
	"github.com/CollinsRutto/realtorgpt/internal/queue"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test backend connectivity",
		Long:  "Check that the database, Redis, and RabbitMQ (if configured) are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			failed := false

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				fmt.Printf("Database:  FAIL (%v)\n", err)
				failed = true
			} else {
				defer func() {
					if err := db.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
					}
				}()
				if err := db.PingContext(ctx); err != nil {
					fmt.Printf("Database:  FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Println("Database:  OK")
				}
			}

			redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
			if err != nil {
				fmt.Printf("Redis:     FAIL (%v)\n", err)
				failed = true
			} else {
				fmt.Println("Redis:     OK")
				_ = redisClient.Close()
			}

			if cfg.RabbitMQURL == "" {
				fmt.Println("RabbitMQ:  not configured (direct usage recording)")
			} else {
				eventQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
				if err != nil {
					fmt.Printf("RabbitMQ:  FAIL (%v)\n", err)
					failed = true
				} else {
					if err := eventQueue.HealthCheck(ctx); err != nil {
						fmt.Printf("RabbitMQ:  FAIL (%v)\n", err)
						failed = true
					} else {
						fmt.Println("RabbitMQ:  OK")
					}
					_ = eventQueue.Close()
				}
			}

			if failed {
				return fmt.Errorf("one or more connectivity checks failed")
			}
			return nil
		},
	}

	return cmd
}
