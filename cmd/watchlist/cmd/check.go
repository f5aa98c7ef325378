package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/watchlist/internal/engine"
)

func checkCmd() *cobra.Command {
	var opts engine.RunOptions

	c := &cobra.Command{
		Use:   "check <watchlist>",
		Short: "Check a watchlist once and mail the digest",
		Long: "Runs one check against the configured store, source and mailer.\n" +
			"Exits non-zero only when the run could not complete: the store is\n" +
			"unreachable, the source failed or the run was interrupted.",
		Args: cobra.ExactArgs(1),
		Example: `  watchlist check birthday
  watchlist check birthday --dry-run --start-page 3`,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			var (
				res    *engine.Result
				runErr error
			)
			if runErr = a.openStore(ctx); runErr != nil {
				res = a.engine().ReportFatal(ctx, args[0], opts, runErr)
			} else {
				res, runErr = a.engine().Run(ctx, args[0], opts)
			}
			if res != nil {
				if err := printResult(os.Stdout, res); err != nil {
					return err
				}
			}
			if runErr != nil {
				return fmt.Errorf("checking %s: %w", args[0], runErr)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&opts.DryRun, "dry-run", false, "classify without saving prices or sending mail")
	c.Flags().IntVar(&opts.StartPage, "start-page", 1, "first wishlist page to fetch")

	return c
}
