package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/watchlist/internal/api/client"
)

func runsCmd() *cobra.Command {
	var params apiclient.ListRunsParams

	c := &cobra.Command{
		Use:   "runs",
		Short: "List recent watchlist runs",
		Example: `  watchlist runs
  watchlist runs --watchlist birthday --status failed --limit 5`,
		RunE: func(_ *cobra.Command, _ []string) error {
			runs, err := newClient().ListRuns(context.Background(), &params)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, runs)
			}
			if len(runs) == 0 {
				fmt.Println("No runs found.")
				return nil
			}
			return printRunsTable(os.Stdout, runs)
		},
	}

	c.Flags().StringVar(&params.Watchlist, "watchlist", "", "filter by watchlist name")
	c.Flags().StringVar(&params.Status, "status", "", "filter by status (running, succeeded, failed, aborted)")
	c.Flags().IntVar(&params.Limit, "limit", 0, "number of runs (default 20)")

	return c
}
