package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opendata-br/ibgesync/internal/pipeline"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  "Creates the ibge schema and applies any pending SQL migrations without running the pipeline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return &pipeline.ConfigError{Err: err}
		}

		pool, err := openPool(ctx)
		if err != nil {
			return &pipeline.ConfigError{Err: err}
		}
		defer pool.Close()

		if err := pipeline.Migrate(ctx, pool); err != nil {
			return err
		}

		fmt.Println("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
