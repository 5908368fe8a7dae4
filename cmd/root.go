package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opendata-br/ibgesync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ibgesync",
	Short: "Idempotent IBGE municipality sync",
	Long:  "Fetches the IBGE municipality dataset, enriches it with a local state/region table, and upserts it into Postgres so reruns converge to the same state.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Credentials may live in a local .env file; absence is fine.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
