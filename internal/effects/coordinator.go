package effects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/markup"
	"github.com/ptasker/gutenberg/internal/remote"
)

// Coordinator is the single-writer dispatch loop tying the pieces
// together: editor state, the block type registry, and the remote
// reusable-block collection.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Settle(), Stop(): safe from any goroutine
type Coordinator struct {
	store    editor.Store
	registry block.Registry
	remote   remote.Store
	ids      block.IDGenerator
	parser   markup.Parser
	queue    *actionQueue
	idle     idleTracker
	observer func(action.Action)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver registers a hook invoked for every action right after the
// reducer applies it, in processing order. The scenario runner records
// traces through it.
func WithObserver(fn func(action.Action)) Option {
	return func(c *Coordinator) {
		c.observer = fn
	}
}

// WithIDGenerator replaces the production UUID generator, for
// deterministic ids in tests and scenarios.
func WithIDGenerator(gen block.IDGenerator) Option {
	return func(c *Coordinator) {
		c.ids = gen
	}
}

// New creates a Coordinator over the given state container, registry,
// and remote collection.
func New(store editor.Store, registry block.Registry, remoteStore remote.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		registry: registry,
		remote:   remoteStore,
		ids:      block.UUIDGenerator{},
		queue:    newActionQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = markup.Parser{IDs: c.ids}
	return c
}

// Dispatch enqueues an action for the loop. Safe from any goroutine.
// Returns false when the coordinator is stopped; the action is dropped.
func (c *Coordinator) Dispatch(act action.Action) bool {
	c.idle.Add()
	if !c.queue.Enqueue(act) {
		c.idle.Done()
		slog.Debug("dispatch after stop, action dropped", "kind", act.Kind())
		return false
	}
	return true
}

// Run starts the single-writer dispatch loop. Blocks until ctx is
// cancelled or Stop is called; actions already queued at Stop are
// drained first.
//
// Must be called from exactly ONE goroutine. All reducer application and
// synchronous effect handling happen here.
//
// Handler failures are logged with their action context and processing
// continues; retries would make runs non-reproducible.
func (c *Coordinator) Run(ctx context.Context) error {
	slog.Info("coordinator starting")

	for {
		act, ok := c.queue.TryDequeue()
		if ok {
			if err := c.process(ctx, act); err != nil {
				slog.Error("action handler failed",
					"kind", act.Kind(),
					"action", act,
					"error", err,
				)
			}
			c.idle.Done()
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("coordinator stopping", "reason", "context cancelled")
			c.queue.Close()
			return ctx.Err()

		case <-c.queue.Wait():
			// The signal channel closes when the queue closes, so this
			// case keeps firing until leftovers are drained.
			if c.queue.Closed() && c.queue.Len() == 0 {
				slog.Info("coordinator stopping", "reason", "queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. The loop drains actions already queued, then
// Run returns. Dispatches after Stop are dropped.
func (c *Coordinator) Stop() {
	c.queue.Close()
}

// Settle blocks until the queue is drained and no remote work is in
// flight, including everything those actions dispatch in turn. Requires
// a running loop.
func (c *Coordinator) Settle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.idle.Idle():
		return nil
	}
}

// process applies one action and routes it. Called only from the Run
// goroutine.
func (c *Coordinator) process(ctx context.Context, act action.Action) error {
	slog.Debug("processing action", "kind", act.Kind())

	// Reduce before routing, so the handler reads post-action state.
	if err := c.store.Apply(act); err != nil {
		return fmt.Errorf("apply %s: %w", act.Kind(), err)
	}

	if c.observer != nil {
		c.observer(act)
	}

	return c.route(ctx, act)
}

// dispatchAll dispatches a synchronous handler's plan in emission order.
func (c *Coordinator) dispatchAll(plan []action.Action) {
	for _, act := range plan {
		c.Dispatch(act)
	}
}

// spawn runs fn in its own goroutine, tracked so Settle can wait for it.
func (c *Coordinator) spawn(fn func()) {
	c.idle.Add()
	go func() {
		defer c.idle.Done()
		fn()
	}()
}
