package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/blocklib"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/effects"
	"github.com/ptasker/gutenberg/internal/post"
	"github.com/ptasker/gutenberg/internal/remote"
	"github.com/ptasker/gutenberg/internal/testutil"
)

// settleTimeout bounds how long one dispatch step's cascade may run.
const settleTimeout = 10 * time.Second

// Run executes a scenario against a fresh coordinator and returns the
// applied trace plus assertion outcomes.
//
// Each scenario gets its own state container, remote collection, and
// coordinator loop. The runner settles after every dispatch step, so any
// async work a step triggers completes before the next step runs.
func Run(scenario *Scenario) (*Result, error) {
	registry, err := blocklib.New()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	mem := editor.NewMemory()
	if err := seedEditor(mem, scenario.Initial); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	rem := seedRemote(scenario.Remote)

	result := NewResult()
	coord := effects.New(mem, registry, rem,
		effects.WithIDGenerator(testutil.NewSequenceIDGenerator("id")),
		effects.WithObserver(result.observe),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	stepErr := dispatchSteps(ctx, coord, scenario.Dispatch)

	coord.Stop()
	if err := <-done; err != nil && stepErr == nil {
		stepErr = fmt.Errorf("run loop: %w", err)
	}
	if stepErr != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, stepErr)
	}

	state := &AssertionContext{Editor: mem, Remote: rem}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, state) {
		result.AddError(msg)
	}
	return result, nil
}

func dispatchSteps(ctx context.Context, coord *effects.Coordinator, steps []DispatchStep) error {
	for i, step := range steps {
		act, err := step.buildAction()
		if err != nil {
			return fmt.Errorf("dispatch[%d]: %w", i, err)
		}
		if !coord.Dispatch(act) {
			return fmt.Errorf("dispatch[%d]: coordinator stopped", i)
		}

		settleCtx, cancel := context.WithTimeout(ctx, settleTimeout)
		err = coord.Settle(settleCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("dispatch[%d]: settle: %w", i, err)
		}
	}
	return nil
}

func seedEditor(mem *editor.Memory, initial InitialState) error {
	if initial.Post != nil {
		mem.SetPost(post.Post{
			ID:      initial.Post.ID,
			Title:   post.TextField{Raw: initial.Post.Title},
			Content: post.TextField{Raw: initial.Post.Content},
			Status:  post.Status(initial.Post.Status),
		})
	}
	if initial.Dirty {
		mem.MarkDirty(true)
	}
	if initial.Saving {
		mem.MarkSaving(true)
	}
	if len(initial.MetaBoxes) > 0 {
		mem.MarkMetaBoxesDirty(initial.MetaBoxes...)
	}

	if len(initial.Blocks) > 0 {
		blocks := make([]block.Block, 0, len(initial.Blocks))
		for i, bs := range initial.Blocks {
			attrs, err := block.Normalize(block.Attributes(bs.Attributes))
			if err != nil {
				return fmt.Errorf("initial.blocks[%d]: %w", i, err)
			}
			blocks = append(blocks, block.Block{ID: bs.ID, Type: bs.Type, Attributes: attrs})
		}
		mem.SetBlocks(blocks)
	}

	for i, rs := range initial.Reusable {
		attrs, err := block.Normalize(block.Attributes(rs.Attributes))
		if err != nil {
			return fmt.Errorf("initial.reusable[%d]: %w", i, err)
		}
		mem.PutReusableBlock(post.ReusableBlock{
			ID:         rs.ID,
			Title:      rs.Title,
			Type:       rs.Type,
			Attributes: attrs,
		})
	}
	return nil
}

func seedRemote(setup RemoteSetup) *remote.Memory {
	records := make([]remote.Record, 0, len(setup.Records))
	for _, rs := range setup.Records {
		records = append(records, remote.Record{ID: rs.ID, Name: rs.Name, Content: rs.Content})
	}
	rem := remote.NewMemory(records...)

	if setup.FailFetch != nil {
		rem.FailFetch(&remote.Error{Code: setup.FailFetch.Code, Message: setup.FailFetch.Message})
	}
	if setup.FailSave != nil {
		rem.FailSave(&remote.Error{Code: setup.FailSave.Code, Message: setup.FailSave.Message})
	}
	return rem
}
