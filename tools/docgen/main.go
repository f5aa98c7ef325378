// Command docgen writes the watchlist CLI reference as markdown pages or
// man pages, one file per command.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/watchlist/cmd/watchlist/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated pages")
	format := flag.String("format", "markdown", "page format: markdown or man")
	flag.Parse()

	if err := generate(cmd.Root(), *format, *output); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("CLI %s docs generated in %s/\n", *format, *output)
}

func generate(root *cobra.Command, format, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	root.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown":
		err = doc.GenMarkdownTree(root, dir)
	case "man":
		err = doc.GenManTree(root, &doc.GenManHeader{
			Title:   "WATCHLIST",
			Section: "1",
			Source:  "watchlist " + cmd.Version,
			Manual:  "Watchlist Manual",
		}, dir)
	default:
		return fmt.Errorf("unknown format %q (want markdown or man)", format)
	}
	if err != nil {
		return fmt.Errorf("generating %s docs: %w", format, err)
	}
	return nil
}
