package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/blocklib"
	"github.com/ptasker/gutenberg/internal/config"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/effects"
	"github.com/ptasker/gutenberg/internal/remote"
)

// fetchSettleTimeout bounds one fetch cascade against a slow collection.
const fetchSettleTimeout = 30 * time.Second

// BlocksOptions holds flags for the blocks command group.
type BlocksOptions struct {
	*RootOptions
	Database  string // path to a SQLite collection
	RemoteURL string // base URL of a remote collection
	Token     string // bearer token for the remote collection
}

// BlockSummary is one reusable block in list output.
type BlockSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// BlockDetail is the full form of one reusable block.
type BlockDetail struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Type       string           `json:"type"`
	Attributes block.Attributes `json:"attributes,omitempty"`
}

// BlockListResult holds the blocks fetched from a collection.
type BlockListResult struct {
	Blocks []BlockSummary `json:"blocks"`
	Count  int            `json:"count"`
}

// NewBlocksCommand creates the blocks command group.
func NewBlocksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlocksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Inspect a reusable block collection",
		Long: `Fetch reusable blocks from a collection through the coordinator.

The collection is either a SQLite database (--db) or a remote HTTP
collection (--remote). When neither flag is set, GUTENBERG_DB_PATH and
GUTENBERG_REMOTE_URL are consulted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to a SQLite reusable block collection")
	cmd.PersistentFlags().StringVar(&opts.RemoteURL, "remote", "", "base URL of a remote reusable block collection")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token for the remote collection")

	cmd.AddCommand(newBlocksListCommand(opts))
	cmd.AddCommand(newBlocksGetCommand(opts))

	return cmd
}

func newBlocksListCommand(opts *BlocksOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all reusable blocks in the collection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocksList(opts, cmd)
		},
	}
}

func newBlocksGetCommand(opts *BlocksOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Fetch a single reusable block by id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocksGet(opts, args[0], cmd)
		},
	}
}

func runBlocksList(opts *BlocksOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	mem, failure, err := fetchReusableBlocks(opts, "")
	if err != nil {
		return err
	}
	if failure != nil {
		return outputRemoteFailure(formatter, failure)
	}

	reusable := mem.ReusableBlocks()
	summaries := make([]BlockSummary, 0, len(reusable))
	for _, rb := range reusable {
		summaries = append(summaries, BlockSummary{ID: rb.ID, Title: rb.Title, Type: rb.Type})
	}
	result := BlockListResult{Blocks: summaries, Count: len(summaries)}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Count == 0 {
		fmt.Fprintln(formatter.Writer, "No reusable blocks found.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Found %d reusable block(s)\n", result.Count)
	for _, b := range summaries {
		fmt.Fprintf(formatter.Writer, "  %s  %s (%s)\n", b.ID, b.Title, b.Type)
	}
	return nil
}

func runBlocksGet(opts *BlocksOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	mem, failure, err := fetchReusableBlocks(opts, id)
	if err != nil {
		return err
	}
	if failure != nil {
		return outputRemoteFailure(formatter, failure)
	}

	rb, err := mem.ReusableBlockByID(id)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	detail := BlockDetail{ID: rb.ID, Title: rb.Title, Type: rb.Type, Attributes: rb.Attributes}

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	fmt.Fprintf(formatter.Writer, "%s  %s (%s)\n", detail.ID, detail.Title, detail.Type)
	if len(detail.Attributes) > 0 {
		attrs, err := json.Marshal(detail.Attributes)
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "  attributes: %s\n", attrs)
	}
	return nil
}

// fetchReusableBlocks runs a fetch through a fresh coordinator and returns
// the editor state it populated. A structured collection failure comes
// back as the second value; transport and configuration problems as the
// error.
func fetchReusableBlocks(opts *BlocksOptions, id string) (*editor.Memory, *action.APIError, error) {
	configureLogging(opts.RootOptions)

	store, closeStore, err := openCollection(opts.Database, opts.RemoteURL, opts.Token, false)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if closeStore == nil {
			return
		}
		if err := closeStore(); err != nil {
			slog.Warn("closing block collection", "error", err)
		}
	}()

	registry, err := blocklib.New()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "building block registry", err)
	}

	mem := editor.NewMemory()
	var failure *action.APIError
	coord := effects.New(mem, registry, store,
		effects.WithObserver(func(a action.Action) {
			if f, ok := a.(action.FetchReusableBlocksFailure); ok {
				failure = &f.Error
			}
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	coord.Dispatch(action.FetchReusableBlocks{ID: id})

	settleCtx, settleCancel := context.WithTimeout(ctx, fetchSettleTimeout)
	settleErr := coord.Settle(settleCtx)
	settleCancel()

	coord.Stop()
	if err := <-done; err != nil && settleErr == nil {
		settleErr = err
	}
	if settleErr != nil {
		return nil, nil, WrapExitError(ExitFailure, "fetching reusable blocks", settleErr)
	}

	return mem, failure, nil
}

// openCollection resolves the store from flag values, falling back to the
// environment when no flag names one. With allowMemory set, a fresh
// in-memory collection stands in when nothing is configured; otherwise
// that is a configuration error.
func openCollection(database, remoteURL, token string, allowMemory bool) (remote.Store, func() error, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}

	// Flags win as a layer: env paths apply only when no flag names a store.
	if database == "" && remoteURL == "" {
		database, remoteURL = cfg.DBPath, cfg.RemoteURL
	}
	if token == "" {
		token = cfg.RemoteToken
	}

	switch {
	case database != "" && remoteURL != "":
		return nil, nil, NewExitError(ExitCommandError, "--db and --remote are mutually exclusive")
	case remoteURL != "":
		return remote.NewHTTP(remoteURL, token, cfg.HTTPTimeout), nil, nil
	case database != "":
		store, err := remote.OpenSQLite(database)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "opening block collection", err)
		}
		return store, store.Close, nil
	case allowMemory:
		return remote.NewMemory(), nil, nil
	default:
		return nil, nil, NewExitError(ExitCommandError,
			"no reusable block collection configured: pass --db or --remote, or set GUTENBERG_DB_PATH or GUTENBERG_REMOTE_URL")
	}
}

// outputRemoteFailure reports a structured collection failure.
func outputRemoteFailure(formatter *OutputFormatter, failure *action.APIError) error {
	_ = formatter.Error(ErrCodeRemote, failure.Message, map[string]any{"code": failure.Code})
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", failure.Code, failure.Message))
}

// newFormatter builds the standard formatter wired to a command's streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
