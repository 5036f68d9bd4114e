package effects

import (
	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/editor"
)

// MetaBoxPlan flushes meta-box panels after a successful post save. No
// dirty panels, nothing to flush.
func MetaBoxPlan(st editor.State) []action.Action {
	dirty := st.DirtyMetaBoxes()
	if len(dirty) == 0 {
		return nil
	}
	return []action.Action{action.RequestMetaBoxUpdates{PanelIDs: dirty}}
}
