package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/editor"
)

func TestMetaBoxPlan_NoDirtyPanels(t *testing.T) {
	mem := editor.NewMemory()
	assert.Empty(t, MetaBoxPlan(mem))
}

func TestMetaBoxPlan_DirtyPanels(t *testing.T) {
	mem := editor.NewMemory()
	mem.MarkMetaBoxesDirty("normal", "side")

	plan := MetaBoxPlan(mem)
	require.Len(t, plan, 1)

	update, ok := plan[0].(action.RequestMetaBoxUpdates)
	require.True(t, ok, "expected RequestMetaBoxUpdates, got %T", plan[0])
	assert.Equal(t, []string{"normal", "side"}, update.PanelIDs)
}
