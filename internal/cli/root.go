package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root gutenberg command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "gutenberg",
		Short: "Gutenberg - block editor coordination tooling",
		Long: `Tooling for the block editor coordination layer: block type
definitions, document markup, scenario conformance, and the reusable
block collection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text or json)")

	rootCmd.AddCommand(NewValidateCommand(opts))
	rootCmd.AddCommand(NewParseCommand(opts))
	rootCmd.AddCommand(NewTestCommand(opts))
	rootCmd.AddCommand(NewBlocksCommand(opts))
	rootCmd.AddCommand(NewRunCommand(opts))

	return rootCmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog output to stderr at a level matching the
// verbose flag. Commands that run the coordinator call this so loop
// logging never corrupts structured stdout output.
func configureLogging(opts *RootOptions) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
