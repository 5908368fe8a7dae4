package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opendata-br/ibgesync/internal/fetcher"
	"github.com/opendata-br/ibgesync/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the municipality sync pipeline",
	Long: `Run one complete pipeline pass: fetch the IBGE municipality list,
clean and flatten it, join it against the local state/region table, and
upsert the result into ibge.municipalities.

Rerunning against unchanged source data leaves the table untouched.
Use --prune to also delete municipalities no longer present upstream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "run"))

		if err := cfg.Validate(); err != nil {
			return &pipeline.ConfigError{Err: err}
		}
		if prune, _ := cmd.Flags().GetBool("prune"); prune {
			cfg.Load.Prune = true
		}

		pool, err := openPool(ctx)
		if err != nil {
			return &pipeline.ConfigError{Err: err}
		}
		defer pool.Close()

		// Ensure the schema is current before writing.
		if err := pipeline.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "run: migrate")
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.API.UserAgent,
			Timeout:   time.Duration(cfg.API.TimeoutSecs) * time.Second,
		})

		p := pipeline.New(cfg, pool, f)
		res, err := p.Run(ctx)
		if err != nil {
			log.Error("pipeline failed", zap.Error(err))
			return err
		}

		fmt.Printf("Sync complete: %d fetched, %d dropped, %d duplicates, %d unmatched, %d loaded, %d pruned\n",
			res.Fetched, res.Dropped, res.Duplicates, res.Unmatched, res.Loaded, res.Pruned)
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("prune", false, "delete municipalities absent from the fetched batch")
	rootCmd.AddCommand(runCmd)
}
