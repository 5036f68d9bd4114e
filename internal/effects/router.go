package effects

import (
	"context"

	"github.com/ptasker/gutenberg/internal/action"
)

// route hands one applied action to the handler consuming it. The action
// union is closed; variants no handler consumes are listed explicitly as
// no-ops, so a new variant shows up here as a build break.
func (c *Coordinator) route(ctx context.Context, act action.Action) error {
	switch a := act.(type) {
	case action.MergeBlocks:
		plan, err := Merge(c.registry, a.BlockA, a.BlockB)
		if err != nil {
			return err
		}
		c.dispatchAll(plan)
		return nil

	case action.Autosave:
		c.dispatchAll(AutosavePlan(c.store))
		return nil

	case action.RequestPostUpdateSuccess:
		c.dispatchAll(MetaBoxPlan(c.store))
		return nil

	case action.SetupEditor:
		plan, err := SetupPlan(c.parser, a.Post)
		if err != nil {
			return err
		}
		c.dispatchAll(plan)
		return nil

	case action.FetchReusableBlocks:
		c.fetchReusableBlocks(ctx, a)
		return nil

	case action.SaveReusableBlock:
		return c.saveReusableBlock(ctx, a)

	case action.ConvertBlockToStatic:
		plan, err := ToStatic(c.store, c.ids, a.BlockID)
		if err != nil {
			return err
		}
		c.dispatchAll(plan)
		return nil

	case action.ConvertBlockToReusable:
		plan, err := ToReusable(c.store, c.ids, a.BlockID)
		if err != nil {
			return err
		}
		c.dispatchAll(plan)
		return nil

	case action.FocusBlock, action.ReplaceBlocks, action.EditPost,
		action.SavePost, action.RequestMetaBoxUpdates, action.ResetPost,
		action.ResetBlocks, action.SetupNewPost, action.UpdateReusableBlock,
		action.FetchReusableBlocksSuccess, action.FetchReusableBlocksFailure,
		action.SaveReusableBlockSuccess, action.SaveReusableBlockFailure:
		// State-only variants, handled entirely by the reducer.
		return nil
	}
	return nil
}
