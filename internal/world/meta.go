package world

import (
	"github.com/google/uuid"

	"github.com/roach88/tally/internal/accounting"
)

// NodeMeta is display state for one group. It lives outside the node
// tree so that edits and undo history never disturb it: undoing past
// the creation of a group and redoing it back keeps the group
// collapsed.
type NodeMeta struct {
	// Collapsed hides the group's children when the tree is shown.
	Collapsed bool `json:"collapsed"`
}

// NodeMetas maps group ids to their display metadata.
type NodeMetas map[uuid.UUID]NodeMeta

// Meta returns the metadata for a group, or the zero value when none
// is recorded.
func (m NodeMetas) Meta(id uuid.UUID) NodeMeta {
	return m[id]
}

// SetMeta records metadata for one group.
func (m *NodeMetas) SetMeta(id uuid.UUID, meta NodeMeta) {
	if *m == nil {
		*m = NodeMetas{}
	}
	(*m)[id] = meta
}

// BatchUpdate merges metadata for several groups at once, such as the
// metadata carried over when a subtree is copied.
func (m *NodeMetas) BatchUpdate(updates map[uuid.UUID]NodeMeta) {
	if len(updates) == 0 {
		return
	}
	if *m == nil {
		*m = NodeMetas{}
	}
	for id, meta := range updates {
		(*m)[id] = meta
	}
}

// Prune drops metadata for groups that no longer appear in the tree.
// Only call it when no undo history could bring those groups back,
// such as right after loading a world.
func (m NodeMetas) Prune(root *accounting.Node) {
	if len(m) == 0 || root == nil {
		return
	}
	live := make(map[uuid.UUID]bool, len(m))
	root.Walk(func(n *accounting.Node) bool {
		if g, ok := n.Group(); ok {
			live[g.ID] = true
		}
		return true
	})
	for id := range m {
		if !live[id] {
			delete(m, id)
		}
	}
}
