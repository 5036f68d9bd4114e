package effects

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
)

// mergeRegistry builds a minimal library: a mergeable text type, a
// mergeable type bridging to it, one with a broken bridge, and one with
// no capabilities at all.
func mergeRegistry(t *testing.T) block.Registry {
	t.Helper()

	concat := func(a, b block.Attributes) block.Attributes {
		left, _ := a["content"].(string)
		right, _ := b["content"].(string)
		return block.Attributes{"content": left + right}
	}

	reg, err := block.NewLibrary(
		&block.TypeDescriptor{
			Name:  "core/paragraph",
			Title: "Paragraph",
			Merge: concat,
		},
		&block.TypeDescriptor{
			Name:  "core/heading",
			Title: "Heading",
			Merge: concat,
			Transforms: []block.TransformRule{{
				Targets: []string{"core/paragraph"},
				Apply: func(attrs block.Attributes) (block.Block, error) {
					content, _ := attrs["content"].(string)
					return block.Block{
						Type:       "core/paragraph",
						Attributes: block.Attributes{"content": content},
					}, nil
				},
			}},
		},
		&block.TypeDescriptor{
			Name:  "core/broken",
			Title: "Broken",
			Transforms: []block.TransformRule{{
				Targets: []string{"core/paragraph"},
				Apply: func(block.Attributes) (block.Block, error) {
					return block.Block{}, errors.New("bridge exploded")
				},
			}},
		},
		&block.TypeDescriptor{
			Name:  "core/code",
			Title: "Code",
		},
	)
	require.NoError(t, err)
	return reg
}

func TestMerge_TypeWithoutMergeFunction(t *testing.T) {
	reg := mergeRegistry(t)

	a := block.Block{ID: "a1", Type: "core/code", Attributes: block.Attributes{"content": "x"}}
	b := block.Block{ID: "b1", Type: "core/code", Attributes: block.Attributes{"content": "y"}}

	plan, err := Merge(reg, a, b)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	focus, ok := plan[0].(action.FocusBlock)
	require.True(t, ok, "expected FocusBlock, got %T", plan[0])
	assert.Equal(t, "a1", focus.BlockID)
	assert.Nil(t, focus.Offset)
}

func TestMerge_SameType(t *testing.T) {
	reg := mergeRegistry(t)

	a := block.Block{ID: "a1", Type: "core/paragraph", Attributes: block.Attributes{"content": "Hello ", "dropCap": true}}
	b := block.Block{ID: "b1", Type: "core/paragraph", Attributes: block.Attributes{"content": "world"}}

	plan, err := Merge(reg, a, b)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	focus, ok := plan[0].(action.FocusBlock)
	require.True(t, ok)
	assert.Equal(t, "a1", focus.BlockID)
	require.NotNil(t, focus.Offset)
	assert.Equal(t, -1, *focus.Offset)

	replace, ok := plan[1].(action.ReplaceBlocks)
	require.True(t, ok)
	assert.Equal(t, []string{"a1", "b1"}, replace.BlockIDs)
	require.Len(t, replace.Blocks, 1)
	assert.Equal(t, block.Block{
		ID:   "a1",
		Type: "core/paragraph",
		// Overlay keeps a's untouched attributes alongside the merge result.
		Attributes: block.Attributes{"content": "Hello world", "dropCap": true},
	}, replace.Blocks[0])
}

func TestMerge_CrossTypeBridged(t *testing.T) {
	reg := mergeRegistry(t)

	a := block.Block{ID: "a1", Type: "core/paragraph", Attributes: block.Attributes{"content": "Start. "}}
	b := block.Block{ID: "b1", Type: "core/heading", Attributes: block.Attributes{"content": "End", "level": float64(2)}}

	plan, err := Merge(reg, a, b)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	replace, ok := plan[1].(action.ReplaceBlocks)
	require.True(t, ok)
	require.Len(t, replace.Blocks, 1)
	assert.Equal(t, block.Attributes{"content": "Start. End"}, replace.Blocks[0].Attributes)

	// Bridging then merging equals merging with b already transformed.
	transformed := block.Block{ID: "b1", Type: "core/paragraph", Attributes: block.Attributes{"content": "End"}}
	direct, err := Merge(reg, a, transformed)
	require.NoError(t, err)
	assert.Equal(t, direct, plan)
}

func TestMerge_CrossTypeWithoutBridge(t *testing.T) {
	reg := mergeRegistry(t)

	a := block.Block{ID: "a1", Type: "core/paragraph", Attributes: block.Attributes{"content": "keep"}}
	b := block.Block{ID: "b1", Type: "core/code", Attributes: block.Attributes{"content": "drop"}}

	plan, err := Merge(reg, a, b)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestMerge_UnknownTypes(t *testing.T) {
	reg := mergeRegistry(t)

	_, err := Merge(reg,
		block.Block{ID: "a1", Type: "core/ghost"},
		block.Block{ID: "b1", Type: "core/paragraph"},
	)
	require.Error(t, err)
	assert.True(t, block.IsNotFound(err))

	_, err = Merge(reg,
		block.Block{ID: "a1", Type: "core/paragraph"},
		block.Block{ID: "b1", Type: "core/ghost"},
	)
	require.Error(t, err)
	assert.True(t, block.IsNotFound(err))
}

func TestMerge_TransformFailurePropagates(t *testing.T) {
	reg := mergeRegistry(t)

	a := block.Block{ID: "a1", Type: "core/paragraph", Attributes: block.Attributes{"content": "x"}}
	b := block.Block{ID: "b1", Type: "core/broken"}

	_, err := Merge(reg, a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge exploded")
}
