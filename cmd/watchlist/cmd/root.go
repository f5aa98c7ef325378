// Package cmd implements the watchlist CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/watchlist/internal/api/client"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Track wishlist prices and mail a digest of what changed",
	Long: "watchlist walks the pages of a wishlist, records every item's price in an\n" +
		"append-only history, and emails a digest of items that got cheaper, hit an\n" +
		"all-time low, got pricier or went out of stock.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initClientConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "service config file path")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(
		checkCmd(),
		serveCmd(),
		migrateCmd(),
		historyCmd(),
		runsCmd(),
		triggerCmd(),
		versionCmd(),
	)
}

func initClientConfig() {
	viper.SetEnvPrefix("WATCHLIST")
	viper.AutomaticEnv()
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
