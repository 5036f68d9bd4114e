// Package post defines the post and reusable-block records shared across
// effect handlers and the editor state boundary.
package post

import "github.com/ptasker/gutenberg/internal/block"

// Status is a post's publication status.
type Status string

const (
	StatusAutoDraft Status = "auto-draft"
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPrivate   Status = "private"
	StatusFuture    Status = "future"
	StatusPublish   Status = "publish"
)

// Published reports whether the status counts as live content. Scheduled
// posts only publish once their date passes, which the editor does not
// track, so future stays unpublished here.
func (s Status) Published() bool {
	return s == StatusPublish || s == StatusPrivate
}

// TextField is a raw text value as the editor holds it before rendering.
type TextField struct {
	Raw string `json:"raw"`
}

// Post is the document under edit.
type Post struct {
	ID      int64     `json:"id"`
	Title   TextField `json:"title"`
	Content TextField `json:"content"`
	Status  Status    `json:"status"`
}

// DefaultReusableTitle names a reusable block created without a title.
const DefaultReusableTitle = "Untitled block"

// ReusableBlock is the editor-side projection of a remote reusable record:
// the record's identity plus the parsed block type and attributes.
type ReusableBlock struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Type       string           `json:"type"`
	Attributes block.Attributes `json:"attributes,omitempty"`
}

// Wrapper returns the static wrapper block embedding this reusable block
// by reference.
func (r ReusableBlock) Wrapper(id string) block.Block {
	return block.Block{
		ID:   id,
		Type: block.ReusableType,
		Attributes: block.Attributes{
			block.RefAttribute: r.ID,
		},
	}
}
