// Command gutenberg is the CLI for the block editor coordination layer:
// validate block type definitions, parse markup documents, run
// conformance scenarios, work with reusable block collections, and
// drive the coordinator from an action stream.
package main

import (
	"fmt"
	"os"

	"github.com/ptasker/gutenberg/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
