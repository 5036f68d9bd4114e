package effects

import (
	"fmt"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/post"
)

// ToReusable turns a static block into a new reusable record: stage the
// record, save it to the collection, and swap the original block for a
// wrapper referencing it. The record id and the wrapper's block id both
// come from the injected generator, in that order.
func ToReusable(st editor.State, ids block.IDGenerator, blockID string) ([]action.Action, error) {
	b, err := st.BlockByID(blockID)
	if err != nil {
		return nil, fmt.Errorf("convert to reusable: %w", err)
	}

	record := post.ReusableBlock{
		ID:         ids.NewID(),
		Title:      post.DefaultReusableTitle,
		Type:       b.Type,
		Attributes: b.Attributes.Clone(),
	}

	return []action.Action{
		action.UpdateReusableBlock{ID: record.ID, ReusableBlock: record},
		action.SaveReusableBlock{ID: record.ID},
		action.ReplaceBlocks{
			BlockIDs: []string{blockID},
			Blocks:   []block.Block{record.Wrapper(ids.NewID())},
		},
	}, nil
}

// ToStatic swaps a wrapper block for a fresh static copy of the reusable
// record it references. Attribute values transfer exactly.
func ToStatic(st editor.State, ids block.IDGenerator, blockID string) ([]action.Action, error) {
	wrapper, err := st.BlockByID(blockID)
	if err != nil {
		return nil, fmt.Errorf("convert to static: %w", err)
	}

	ref, _ := wrapper.Attributes[block.RefAttribute].(string)
	rb, err := st.ReusableBlockByID(ref)
	if err != nil {
		return nil, fmt.Errorf("convert to static: %w", err)
	}

	return []action.Action{
		action.ReplaceBlocks{
			BlockIDs: []string{blockID},
			Blocks: []block.Block{{
				ID:         ids.NewID(),
				Type:       rb.Type,
				Attributes: rb.Attributes.Clone(),
			}},
		},
	}, nil
}
