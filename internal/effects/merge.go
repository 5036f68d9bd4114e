package effects

import (
	"fmt"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
)

// Merge resolves joining block b into block a, the way pressing backspace
// at the start of b asks for. The result is a plan, not a mutation:
//
//   - a's type cannot merge: one focus on a, nothing else.
//   - same type: focus a at its end, then replace both blocks with a
//     carrying the merged attributes.
//   - different types: bridge b through the first of its transform rules
//     producing a's type, then merge as above. No bridge, no plan.
//
// Registry lookups and transform failures are errors for the caller; an
// unmergeable pair is not.
func Merge(reg block.Registry, a, b block.Block) ([]action.Action, error) {
	descA, err := reg.Lookup(a.Type)
	if err != nil {
		return nil, fmt.Errorf("merge blocks: %w", err)
	}

	if descA.Merge == nil {
		return []action.Action{action.FocusBlock{BlockID: a.ID}}, nil
	}

	source := b
	if b.Type != a.Type {
		descB, err := reg.Lookup(b.Type)
		if err != nil {
			return nil, fmt.Errorf("merge blocks: %w", err)
		}
		rule, ok := descB.TransformTo(a.Type)
		if !ok {
			return nil, nil
		}
		source, err = rule.Apply(b.Attributes)
		if err != nil {
			return nil, fmt.Errorf("merge blocks: transform %s to %s: %w", b.Type, a.Type, err)
		}
	}

	merged := a.Attributes.Overlay(descA.Merge(a.Attributes, source.Attributes))

	offset := -1
	return []action.Action{
		action.FocusBlock{BlockID: a.ID, Offset: &offset},
		action.ReplaceBlocks{
			BlockIDs: []string{a.ID, b.ID},
			Blocks: []block.Block{{
				ID:         a.ID,
				Type:       a.Type,
				Attributes: merged,
			}},
		},
	}, nil
}
