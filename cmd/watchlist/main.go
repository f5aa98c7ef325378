// Package main is the entry point for the watchlist service and CLI.
package main

import (
	"os"

	"github.com/donaldgifford/watchlist/cmd/watchlist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
