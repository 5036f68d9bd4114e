package effects

import (
	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/post"
)

// AutosavePlan decides what an autosave tick does with the current
// state. Pure policy: reads state, emits a plan, performs no I/O.
//
// Guards run in order; each bails with an empty plan. A post that is new
// but clean still autosaves, so drafts exist server-side before the first
// manual save.
func AutosavePlan(st editor.State) []action.Action {
	if !st.IsPostSaveable() {
		return nil
	}
	if !st.IsPostDirty() && !st.IsPostNew() {
		return nil
	}
	if st.Post().Status.Published() {
		// TODO: route autosaves for published posts through a revisions
		// endpoint instead of skipping them.
		return nil
	}

	var plan []action.Action
	if st.IsPostNew() {
		plan = append(plan, action.EditPost{
			Edits: map[string]any{"status": string(post.StatusDraft)},
		})
	}
	return append(plan, action.SavePost{})
}
