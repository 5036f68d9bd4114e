package effects

import (
	"fmt"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/markup"
	"github.com/ptasker/gutenberg/internal/post"
)

// SetupPlan turns a loaded post into the editor's initial actions: the
// post itself, its parsed blocks when it has content, and new-post setup
// when it has never been saved.
func SetupPlan(parser markup.Parser, p post.Post) ([]action.Action, error) {
	plan := []action.Action{action.ResetPost{Post: p}}

	if p.Content.Raw != "" {
		blocks, err := parser.ParseDocument(p.Content.Raw)
		if err != nil {
			return nil, fmt.Errorf("setup editor: %w", err)
		}
		plan = append(plan, action.ResetBlocks{Blocks: blocks})
	}

	if p.Status == post.StatusAutoDraft {
		plan = append(plan, action.SetupNewPost{Title: p.Title.Raw})
	}

	return plan, nil
}
