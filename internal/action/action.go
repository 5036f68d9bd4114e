// Package action defines the closed set of editor actions.
//
// Action is a sealed interface: every variant is a struct in this package
// carrying exactly the payload its wire contract names, and nothing outside
// the package can add one. Routing code type-switches over the full set, so
// a new variant fails to compile until every switch handles it.
package action

import (
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/post"
)

// Kind is an action's wire discriminator.
type Kind string

const (
	KindMergeBlocks               Kind = "MERGE_BLOCKS"
	KindFocusBlock                Kind = "FOCUS_BLOCK"
	KindReplaceBlocks             Kind = "REPLACE_BLOCKS"
	KindAutosave                  Kind = "AUTOSAVE"
	KindEditPost                  Kind = "EDIT_POST"
	KindSavePost                  Kind = "SAVE_POST"
	KindRequestPostUpdateSuccess  Kind = "REQUEST_POST_UPDATE_SUCCESS"
	KindRequestMetaBoxUpdates     Kind = "REQUEST_META_BOX_UPDATES"
	KindSetupEditor               Kind = "SETUP_EDITOR"
	KindResetPost                 Kind = "RESET_POST"
	KindResetBlocks               Kind = "RESET_BLOCKS"
	KindSetupNewPost              Kind = "SETUP_NEW_POST"
	KindFetchReusableBlocks       Kind = "FETCH_REUSABLE_BLOCKS"
	KindFetchReusableBlocksOK     Kind = "FETCH_REUSABLE_BLOCKS_SUCCESS"
	KindFetchReusableBlocksFailed Kind = "FETCH_REUSABLE_BLOCKS_FAILURE"
	KindSaveReusableBlock         Kind = "SAVE_REUSABLE_BLOCK"
	KindSaveReusableBlockOK       Kind = "SAVE_REUSABLE_BLOCK_SUCCESS"
	KindSaveReusableBlockFailed   Kind = "SAVE_REUSABLE_BLOCK_FAILURE"
	KindUpdateReusableBlock       Kind = "UPDATE_REUSABLE_BLOCK"
	KindConvertBlockToStatic      Kind = "CONVERT_BLOCK_TO_STATIC"
	KindConvertBlockToReusable    Kind = "CONVERT_BLOCK_TO_REUSABLE"
)

// Action is the sealed union of editor actions.
type Action interface {
	Kind() Kind

	// sealedAction restricts implementations to this package, keeping the
	// union closed.
	sealedAction()
}

// APIError is the structured error envelope a remote failure forwards:
// a machine code plus a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MergeBlocks asks the resolver to merge block B into the preceding
// block A.
type MergeBlocks struct {
	BlockA block.Block `json:"blockA"`
	BlockB block.Block `json:"blockB"`
}

func (MergeBlocks) Kind() Kind    { return KindMergeBlocks }
func (MergeBlocks) sealedAction() {}

// FocusBlock moves the caret into a block. Offset nil focuses the block
// without positioning; -1 places the caret at the end of the content.
type FocusBlock struct {
	BlockID string `json:"blockId"`
	Offset  *int   `json:"offset,omitempty"`
}

func (FocusBlock) Kind() Kind    { return KindFocusBlock }
func (FocusBlock) sealedAction() {}

// ReplaceBlocks swaps a run of blocks for new ones.
type ReplaceBlocks struct {
	BlockIDs []string      `json:"blockIds"`
	Blocks   []block.Block `json:"blocks"`
}

func (ReplaceBlocks) Kind() Kind    { return KindReplaceBlocks }
func (ReplaceBlocks) sealedAction() {}

// Autosave asks the policy to decide whether the post needs saving.
type Autosave struct{}

func (Autosave) Kind() Kind    { return KindAutosave }
func (Autosave) sealedAction() {}

// EditPost stages property edits on the post.
type EditPost struct {
	Edits map[string]any `json:"edits"`
}

func (EditPost) Kind() Kind    { return KindEditPost }
func (EditPost) sealedAction() {}

// SavePost persists the post through the reducer's own save flow.
type SavePost struct{}

func (SavePost) Kind() Kind    { return KindSavePost }
func (SavePost) sealedAction() {}

// RequestPostUpdateSuccess reports that a post save completed.
type RequestPostUpdateSuccess struct {
	Post         post.Post `json:"post"`
	PreviousPost post.Post `json:"previousPost"`
}

func (RequestPostUpdateSuccess) Kind() Kind    { return KindRequestPostUpdateSuccess }
func (RequestPostUpdateSuccess) sealedAction() {}

// RequestMetaBoxUpdates flushes the named dirty meta-box panels.
type RequestMetaBoxUpdates struct {
	PanelIDs []string `json:"panelIds"`
}

func (RequestMetaBoxUpdates) Kind() Kind    { return KindRequestMetaBoxUpdates }
func (RequestMetaBoxUpdates) sealedAction() {}

// SetupEditor boots the editor for a post. Settings ride along on the
// wire for clients that carry editor configuration; no handler reads them.
type SetupEditor struct {
	Post     post.Post      `json:"post"`
	Settings map[string]any `json:"settings,omitempty"`
}

func (SetupEditor) Kind() Kind    { return KindSetupEditor }
func (SetupEditor) sealedAction() {}

// ResetPost loads a post record into state.
type ResetPost struct {
	Post post.Post `json:"post"`
}

func (ResetPost) Kind() Kind    { return KindResetPost }
func (ResetPost) sealedAction() {}

// ResetBlocks replaces the whole block list.
type ResetBlocks struct {
	Blocks []block.Block `json:"blocks"`
}

func (ResetBlocks) Kind() Kind    { return KindResetBlocks }
func (ResetBlocks) sealedAction() {}

// SetupNewPost applies fresh-post defaults, carrying the draft title over.
type SetupNewPost struct {
	Title string `json:"title"`
}

func (SetupNewPost) Kind() Kind    { return KindSetupNewPost }
func (SetupNewPost) sealedAction() {}

// FetchReusableBlocks loads reusable blocks from the remote collection.
// ID empty fetches the whole collection.
type FetchReusableBlocks struct {
	ID string `json:"id,omitempty"`
}

func (FetchReusableBlocks) Kind() Kind    { return KindFetchReusableBlocks }
func (FetchReusableBlocks) sealedAction() {}

// FetchReusableBlocksSuccess delivers fetched reusable blocks, already
// parsed and projected. ID echoes the triggering fetch's id, if any.
type FetchReusableBlocksSuccess struct {
	ID             string               `json:"id,omitempty"`
	ReusableBlocks []post.ReusableBlock `json:"reusableBlocks"`
}

func (FetchReusableBlocksSuccess) Kind() Kind    { return KindFetchReusableBlocksOK }
func (FetchReusableBlocksSuccess) sealedAction() {}

// FetchReusableBlocksFailure reports a failed fetch with the remote's
// error envelope.
type FetchReusableBlocksFailure struct {
	ID    string   `json:"id,omitempty"`
	Error APIError `json:"error"`
}

func (FetchReusableBlocksFailure) Kind() Kind    { return KindFetchReusableBlocksFailed }
func (FetchReusableBlocksFailure) sealedAction() {}

// SaveReusableBlock persists one reusable block to the remote collection.
type SaveReusableBlock struct {
	ID string `json:"id"`
}

func (SaveReusableBlock) Kind() Kind    { return KindSaveReusableBlock }
func (SaveReusableBlock) sealedAction() {}

// SaveReusableBlockSuccess reports a completed save.
type SaveReusableBlockSuccess struct {
	ID string `json:"id"`
}

func (SaveReusableBlockSuccess) Kind() Kind    { return KindSaveReusableBlockOK }
func (SaveReusableBlockSuccess) sealedAction() {}

// SaveReusableBlockFailure reports a failed save. It carries only the id:
// the save path drops transport detail, unlike fetch.
type SaveReusableBlockFailure struct {
	ID string `json:"id"`
}

func (SaveReusableBlockFailure) Kind() Kind    { return KindSaveReusableBlockFailed }
func (SaveReusableBlockFailure) sealedAction() {}

// UpdateReusableBlock stages a reusable block record in state.
type UpdateReusableBlock struct {
	ID            string             `json:"id"`
	ReusableBlock post.ReusableBlock `json:"reusableBlock"`
}

func (UpdateReusableBlock) Kind() Kind    { return KindUpdateReusableBlock }
func (UpdateReusableBlock) sealedAction() {}

// ConvertBlockToStatic detaches a wrapper block back into a plain copy of
// the reusable content.
type ConvertBlockToStatic struct {
	BlockID string `json:"blockId"`
}

func (ConvertBlockToStatic) Kind() Kind    { return KindConvertBlockToStatic }
func (ConvertBlockToStatic) sealedAction() {}

// ConvertBlockToReusable extracts a static block into a new reusable block
// and swaps in a wrapper referencing it.
type ConvertBlockToReusable struct {
	BlockID string `json:"blockId"`
}

func (ConvertBlockToReusable) Kind() Kind    { return KindConvertBlockToReusable }
func (ConvertBlockToReusable) sealedAction() {}
