package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/blocklib"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/effects"
	"github.com/ptasker/gutenberg/internal/post"
)

// runSettleTimeout bounds the cascade one input line may trigger.
const runSettleTimeout = 30 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	RemoteURL string
	Token     string
	PostFile  string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the coordinator on an action stream",
		Long: `Start the coordinator and feed it actions from stdin.

Each input line is one wire-format action, e.g.
{"type":"EDIT_POST","edits":{"title":"Hi"}}. Blank lines and lines
starting with # are skipped. Every applied action, including follow-ups
and gateway completions, is printed to stdout as one JSON line.

Reusable blocks persist to the collection named by --db or --remote
(falling back to GUTENBERG_DB_PATH / GUTENBERG_REMOTE_URL); with
neither, an in-memory collection that lasts for the run.

Example:
  gutenberg run --db ./blocks.db --post ./post.json < actions.jsonl
  echo '{"type":"FETCH_REUSABLE_BLOCKS"}' | gutenberg run --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoordinator(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite reusable block collection")
	cmd.Flags().StringVar(&opts.RemoteURL, "remote", "", "base URL of a remote reusable block collection")
	cmd.Flags().StringVar(&opts.Token, "token", "", "bearer token for the remote collection")
	cmd.Flags().StringVar(&opts.PostFile, "post", "", "JSON file with a post to load before processing")

	return cmd
}

func runCoordinator(opts *RunOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)

	store, closeStore, err := openCollection(opts.Database, opts.RemoteURL, opts.Token, true)
	if err != nil {
		return err
	}
	defer func() {
		if closeStore == nil {
			return
		}
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing block collection", "error", closeErr)
		}
	}()

	registry, err := blocklib.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "building block registry", err)
	}

	mem := editor.NewMemory()
	out := cmd.OutOrStdout()
	coord := effects.New(mem, registry, store,
		effects.WithObserver(func(a action.Action) {
			data, err := action.Marshal(a)
			if err != nil {
				slog.Error("marshaling applied action", "kind", a.Kind(), "error", err)
				return
			}
			fmt.Fprintln(out, string(data))
		}),
	)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	slog.Info("coordinator started, reading actions from stdin")

	streamErr := loadInitialPost(ctx, coord, opts.PostFile)
	if streamErr == nil {
		streamErr = dispatchStream(ctx, coord, cmd)
	}

	coord.Stop()
	loopErr := <-done
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) && !errors.Is(loopErr, context.DeadlineExceeded) {
		if streamErr == nil {
			streamErr = WrapExitError(ExitFailure, "coordinator error", loopErr)
		}
	}
	if streamErr != nil {
		return streamErr
	}

	slog.Info("coordinator stopped gracefully")
	return nil
}

// loadInitialPost dispatches the post named by --post, so edits from the
// stream land on loaded state.
func loadInitialPost(ctx context.Context, coord *effects.Coordinator, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading post file", err)
	}
	var p post.Post
	if err := json.Unmarshal(data, &p); err != nil {
		return WrapExitError(ExitCommandError, "parsing post file", err)
	}

	coord.Dispatch(action.SetupEditor{Post: p})
	return settle(ctx, coord)
}

// dispatchStream feeds stdin lines to the coordinator, settling after
// each so output for one line completes before the next is read.
func dispatchStream(ctx context.Context, coord *effects.Coordinator, cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		act, err := action.Unmarshal([]byte(line))
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("line %d", lineNum), err)
		}

		if !coord.Dispatch(act) {
			// Queue closed by a signal; stop reading.
			return nil
		}
		if err := settle(ctx, coord); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return WrapExitError(ExitFailure, fmt.Sprintf("line %d: settle", lineNum), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "reading stdin", err)
	}
	return nil
}

func settle(ctx context.Context, coord *effects.Coordinator) error {
	settleCtx, cancel := context.WithTimeout(ctx, runSettleTimeout)
	defer cancel()
	return coord.Settle(settleCtx)
}
