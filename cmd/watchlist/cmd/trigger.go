package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/watchlist/internal/api/client"
)

func triggerCmd() *cobra.Command {
	var params apiclient.CheckParams

	c := &cobra.Command{
		Use:   "trigger <watchlist>",
		Short: "Ask the server to check a watchlist now",
		Long: "Runs a check on the server and waits for its summary. The server\n" +
			"refuses with a conflict while a scheduled run of the same watchlist is\n" +
			"in progress.",
		Args: cobra.ExactArgs(1),
		Example: `  watchlist trigger birthday
  watchlist trigger birthday --dry-run --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := newClient().Check(context.Background(), args[0], &params)
			if apiclient.IsConflict(err) {
				return fmt.Errorf("%s is already being checked on the server, try again later", args[0])
			}
			if err != nil {
				return err
			}
			return printResult(os.Stdout, res)
		},
	}

	c.Flags().BoolVar(&params.DryRun, "dry-run", false, "classify without saving prices or sending mail")
	c.Flags().IntVar(&params.StartPage, "start-page", 0, "first wishlist page to fetch")

	return c
}
