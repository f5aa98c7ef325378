package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <identity>",
		Short: "Show the recorded price history of an item",
		Args:  cobra.ExactArgs(1),
		Example: `  watchlist history 0b6a7c2e-5f1d-4c1e-9a0e-2a3c4d5e6f70
  watchlist history 0b6a7c2e-5f1d-4c1e-9a0e-2a3c4d5e6f70 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			h, err := newClient().GetHistory(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, h)
			}
			return printHistory(os.Stdout, h)
		},
	}
}
