// Package editor defines the boundary between effect handlers and the
// state container: a read-only State view, a Reducer that applies
// dispatched actions, and an in-memory reference container implementing
// both.
//
// Handlers never mutate state directly. They read through State and emit
// actions; the coordinator reduces each dispatched action before routing
// it, so a handler observes the effects of every action dispatched ahead
// of it.
package editor

import (
	"fmt"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/post"
)

// NotFoundError reports a lookup for an id absent from state. Handlers
// treat it as a caller contract violation and propagate it; it is never
// converted into a failure action.
type NotFoundError struct {
	// Kind names the record family, e.g. "block" or "reusable block".
	Kind string

	// ID is the missing id.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not in state", e.Kind, e.ID)
}

// State is the read surface injected into effect handlers. Reads inside
// one handler call observe a consistent snapshot: the container is only
// written between handler invocations.
type State interface {
	// Post returns the post under edit.
	Post() post.Post

	// BlockByID returns a block from the current document. Missing ids
	// return a *NotFoundError.
	BlockByID(id string) (block.Block, error)

	// ReusableBlockByID returns a staged reusable record. Missing ids
	// return a *NotFoundError.
	ReusableBlockByID(id string) (post.ReusableBlock, error)

	// IsPostSaveable reports whether saving is possible at all right now:
	// a post is loaded and no save is in flight.
	IsPostSaveable() bool

	// IsPostDirty reports unsaved edits.
	IsPostDirty() bool

	// IsPostNew reports a post that has never been saved.
	IsPostNew() bool

	// DirtyMetaBoxes returns panel ids with unflushed meta-box edits.
	DirtyMetaBoxes() []string
}

// Reducer applies one dispatched action to state.
type Reducer interface {
	Apply(a action.Action) error
}

// Store is what the coordinator needs from a state container.
type Store interface {
	State
	Reducer
}
