package effects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/markup"
	"github.com/ptasker/gutenberg/internal/post"
	"github.com/ptasker/gutenberg/internal/remote"
)

// unknownError is the fallback failure envelope when a remote error
// carries no structured code.
var unknownError = action.APIError{
	Code:    "unknown_error",
	Message: "An unknown error occurred.",
}

// fetchReusableBlocks loads the whole collection, or one record when the
// action names an id, off the loop goroutine. It re-enters with a
// success action carrying projected records in collection order, or a
// failure action carrying the structured error.
func (c *Coordinator) fetchReusableBlocks(ctx context.Context, act action.FetchReusableBlocks) {
	c.spawn(func() {
		records, err := c.fetchRecords(ctx, act.ID)
		if err != nil {
			c.Dispatch(action.FetchReusableBlocksFailure{ID: act.ID, Error: apiError(err)})
			return
		}

		blocks, err := c.projectRecords(records)
		if err != nil {
			slog.Debug("reusable record content unparsable", "error", err)
			c.Dispatch(action.FetchReusableBlocksFailure{ID: act.ID, Error: unknownError})
			return
		}

		c.Dispatch(action.FetchReusableBlocksSuccess{ID: act.ID, ReusableBlocks: blocks})
	})
}

func (c *Coordinator) fetchRecords(ctx context.Context, id string) ([]remote.Record, error) {
	if id == "" {
		return c.remote.FetchAll(ctx)
	}
	rec, err := c.remote.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	return []remote.Record{rec}, nil
}

// projectRecords parses each record's content into its first block and
// projects the editor-side shape, keeping record order.
func (c *Coordinator) projectRecords(records []remote.Record) ([]post.ReusableBlock, error) {
	blocks := make([]post.ReusableBlock, 0, len(records))
	for _, rec := range records {
		b, err := c.parser.ParseFirst(rec.Content)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		blocks = append(blocks, post.ReusableBlock{
			ID:         rec.ID,
			Title:      rec.Name,
			Type:       b.Type,
			Attributes: b.Attributes,
		})
	}
	return blocks, nil
}

// saveReusableBlock reads the staged record synchronously, then submits
// it off the loop goroutine. The completion carries only the id; error
// detail is dropped on this path.
func (c *Coordinator) saveReusableBlock(ctx context.Context, act action.SaveReusableBlock) error {
	rb, err := c.store.ReusableBlockByID(act.ID)
	if err != nil {
		return fmt.Errorf("save reusable block: %w", err)
	}

	content, err := markup.Serialize(block.Block{Type: rb.Type, Attributes: rb.Attributes})
	if err != nil {
		return fmt.Errorf("save reusable block %s: %w", rb.ID, err)
	}
	rec := remote.Record{ID: rb.ID, Name: rb.Title, Content: content}

	c.spawn(func() {
		if err := c.remote.Save(ctx, rec); err != nil {
			slog.Debug("reusable block save failed", "id", rec.ID, "error", err)
			c.Dispatch(action.SaveReusableBlockFailure{ID: act.ID})
			return
		}
		c.Dispatch(action.SaveReusableBlockSuccess{ID: act.ID})
	})
	return nil
}

// apiError extracts the structured failure envelope from a remote error,
// falling back to the generic unknown envelope.
func apiError(err error) action.APIError {
	if re, ok := remote.AsError(err); ok {
		return action.APIError{Code: re.Code, Message: re.Message}
	}
	return unknownError
}
