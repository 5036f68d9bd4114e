package editor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ptasker/gutenberg/internal/action"
	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/post"
)

// Memory is the reference state container: the post under edit, its block
// list, staged reusable records, and the bookkeeping flags the autosave
// policy reads.
//
// Thread-safety: all methods lock internally. Writes normally happen only
// on the coordinator goroutine via Apply; the Set*/Mark* methods exist for
// test and scenario setup before dispatching begins.
type Memory struct {
	mu sync.RWMutex

	post   post.Post
	loaded bool

	blocks []block.Block

	reusable      map[string]post.ReusableBlock
	reusableOrder []string

	dirty          bool
	saving         bool
	dirtyMetaBoxes []string
}

// NewMemory returns an empty container.
func NewMemory() *Memory {
	return &Memory{
		reusable: make(map[string]post.ReusableBlock),
	}
}

// Post implements State.
func (m *Memory) Post() post.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.post
}

// BlockByID implements State.
func (m *Memory) BlockByID(id string) (block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.blocks {
		if b.ID == id {
			return b, nil
		}
	}
	return block.Block{}, &NotFoundError{Kind: "block", ID: id}
}

// ReusableBlockByID implements State.
func (m *Memory) ReusableBlockByID(id string) (post.ReusableBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reusable[id]
	if !ok {
		return post.ReusableBlock{}, &NotFoundError{Kind: "reusable block", ID: id}
	}
	return r, nil
}

// IsPostSaveable implements State.
func (m *Memory) IsPostSaveable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded && !m.saving
}

// IsPostDirty implements State.
func (m *Memory) IsPostDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// IsPostNew implements State.
func (m *Memory) IsPostNew() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.post.Status == post.StatusAutoDraft
}

// DirtyMetaBoxes implements State.
func (m *Memory) DirtyMetaBoxes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.dirtyMetaBoxes)
}

// Blocks returns a copy of the current block list.
func (m *Memory) Blocks() []block.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.blocks)
}

// ReusableBlocks returns staged reusable records in arrival order.
func (m *Memory) ReusableBlocks() []post.ReusableBlock {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]post.ReusableBlock, 0, len(m.reusableOrder))
	for _, id := range m.reusableOrder {
		out = append(out, m.reusable[id])
	}
	return out
}

// SetPost loads a post for scenario setup.
func (m *Memory) SetPost(p post.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.post = p
	m.loaded = true
}

// SetBlocks loads the block list for scenario setup.
func (m *Memory) SetBlocks(bs []block.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = slices.Clone(bs)
}

// PutReusableBlock stages a reusable record for scenario setup.
func (m *Memory) PutReusableBlock(r post.ReusableBlock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putReusableLocked(r)
}

// MarkDirty sets the unsaved-edits flag for scenario setup.
func (m *Memory) MarkDirty(dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = dirty
}

// MarkSaving sets the save-in-flight flag for scenario setup.
func (m *Memory) MarkSaving(saving bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saving = saving
}

// MarkMetaBoxesDirty records panels with unflushed edits for scenario setup.
func (m *Memory) MarkMetaBoxesDirty(panelIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirtyMetaBoxes = slices.Clone(panelIDs)
}

func (m *Memory) putReusableLocked(r post.ReusableBlock) {
	if _, exists := m.reusable[r.ID]; !exists {
		m.reusableOrder = append(m.reusableOrder, r.ID)
	}
	m.reusable[r.ID] = r
}

// Apply implements Reducer. The switch covers the whole action union;
// actions that only trigger effects reduce to nothing here.
func (m *Memory) Apply(a action.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch act := a.(type) {
	case action.ResetPost:
		m.post = act.Post
		m.loaded = true
		m.dirty = false
		return nil

	case action.ResetBlocks:
		m.blocks = slices.Clone(act.Blocks)
		m.dirty = false
		return nil

	case action.SetupNewPost:
		if act.Title != "" {
			m.post.Title.Raw = act.Title
		}
		return nil

	case action.EditPost:
		m.applyEditsLocked(act.Edits)
		m.dirty = true
		return nil

	case action.ReplaceBlocks:
		if err := m.replaceBlocksLocked(act.BlockIDs, act.Blocks); err != nil {
			return err
		}
		m.dirty = true
		return nil

	case action.SavePost:
		m.saving = true
		return nil

	case action.RequestPostUpdateSuccess:
		m.post = act.Post
		m.loaded = true
		m.dirty = false
		m.saving = false
		return nil

	case action.RequestMetaBoxUpdates:
		m.dirtyMetaBoxes = slices.DeleteFunc(m.dirtyMetaBoxes, func(id string) bool {
			return slices.Contains(act.PanelIDs, id)
		})
		return nil

	case action.UpdateReusableBlock:
		m.putReusableLocked(act.ReusableBlock)
		return nil

	case action.FetchReusableBlocksSuccess:
		for _, r := range act.ReusableBlocks {
			m.putReusableLocked(r)
		}
		return nil

	case action.FocusBlock,
		action.MergeBlocks,
		action.Autosave,
		action.SetupEditor,
		action.FetchReusableBlocks,
		action.FetchReusableBlocksFailure,
		action.SaveReusableBlock,
		action.SaveReusableBlockSuccess,
		action.SaveReusableBlockFailure,
		action.ConvertBlockToStatic,
		action.ConvertBlockToReusable:
		// Effect-only; nothing to reduce.
		return nil
	}
	return nil
}

// applyEditsLocked merges staged property edits into the post. Unknown
// keys are carried by richer containers; this one applies the properties
// it models and ignores the rest.
func (m *Memory) applyEditsLocked(edits map[string]any) {
	if v, ok := edits["status"].(string); ok {
		m.post.Status = post.Status(v)
	}
	if v, ok := edits["title"].(string); ok {
		m.post.Title.Raw = v
	}
	if v, ok := edits["content"].(string); ok {
		m.post.Content.Raw = v
	}
}

// replaceBlocksLocked removes the named blocks and splices the
// replacements in at the position of the first removed block.
func (m *Memory) replaceBlocksLocked(ids []string, replacements []block.Block) error {
	if len(ids) == 0 {
		return fmt.Errorf("replace blocks: empty id list")
	}

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	first := -1
	found := make(map[string]bool, len(ids))
	kept := make([]block.Block, 0, len(m.blocks))
	for _, b := range m.blocks {
		if remove[b.ID] {
			if first == -1 {
				first = len(kept)
			}
			found[b.ID] = true
			continue
		}
		kept = append(kept, b)
	}
	for _, id := range ids {
		if !found[id] {
			return &NotFoundError{Kind: "block", ID: id}
		}
	}

	m.blocks = slices.Insert(kept, first, replacements...)
	return nil
}
