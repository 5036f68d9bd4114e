package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/markup"
)

// ParseResult holds the blocks extracted from a markup document.
type ParseResult struct {
	Blocks []block.Block `json:"blocks"`
	Count  int           `json:"count"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var seqIDs bool

	cmd := &cobra.Command{
		Use:   "parse <document>",
		Short: "Parse a block markup document",
		Long: `Parse a comment-delimited block markup document and print the
blocks it contains, in document order.

Each block receives a fresh instance id. Prose outside block delimiters
and content between an opener and its closer are skipped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], seqIDs, cmd)
		},
	}

	cmd.Flags().BoolVar(&seqIDs, "seq", false, "assign sequential ids (block-1, block-2, ...) instead of UUIDs")

	return cmd
}

func runParse(opts *RootOptions, docPath string, seqIDs bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(docPath)
	if os.IsNotExist(err) {
		msg := fmt.Sprintf("document not found: %s", docPath)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, msg))
	}
	if err != nil {
		msg := fmt.Sprintf("reading document: %v", err)
		_ = formatter.Error(ErrCodeReadFailed, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeReadFailed, msg))
	}

	var ids block.IDGenerator = block.UUIDGenerator{}
	if seqIDs {
		ids = &sequentialIDs{}
	}

	parser := markup.Parser{IDs: ids}
	blocks, err := parser.ParseDocument(string(data))
	if err != nil {
		var parseErr *markup.ParseError
		if errors.As(err, &parseErr) {
			_ = formatter.Error(ErrCodeParseFailed, parseErr.Error(), map[string]any{
				"offset": parseErr.Offset,
				"reason": parseErr.Reason,
			})
		} else {
			_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		}
		// Malformed documents are operation failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %v", ErrCodeParseFailed, err))
	}

	formatter.VerboseLog("Parsed %s (%d byte(s))", docPath, len(data))

	if blocks == nil {
		blocks = []block.Block{}
	}
	result := ParseResult{Blocks: blocks, Count: len(blocks)}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Parsed %d block(s)\n", result.Count)
	for _, b := range blocks {
		fmt.Fprintf(formatter.Writer, "  %s  %s", b.ID, b.Type)
		if len(b.Attributes) > 0 {
			attrs, err := json.Marshal(b.Attributes)
			if err != nil {
				return err
			}
			fmt.Fprintf(formatter.Writer, "  %s", attrs)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// sequentialIDs mints block-1, block-2, ... so parse output is stable
// across runs. Only wired up behind the --seq flag; documents parsed for
// the coordinator always use UUIDv7 ids.
type sequentialIDs struct {
	n int
}

func (g *sequentialIDs) NewID() string {
	g.n++
	return fmt.Sprintf("block-%d", g.n)
}
