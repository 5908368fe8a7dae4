package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opendata-br/ibgesync/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		if err := cfg.Validate(); err != nil {
			return &pipeline.ConfigError{Err: err}
		}

		pool, err := openPool(ctx)
		if err != nil {
			return &pipeline.ConfigError{Err: err}
		}
		defer pool.Close()

		entries, err := pipeline.NewRunLog(pool).List(ctx, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSTATUS\tFETCHED\tDROPPED\tUNMATCHED\tLOADED\tPRUNED\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				e.StartedAt.Format("2006-01-02 15:04:05"),
				e.Status, e.Fetched, e.Dropped, e.Unmatched, e.Loaded, e.Pruned, e.Error)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
