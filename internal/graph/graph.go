// Package graph edits factory trees by child-index path. A path is a
// sequence of child indexes walked from a root node, so the empty path
// names the root itself. Operations never modify their inputs: they
// return a fresh root with group balances recomputed along the touched
// spine. Invalid paths log a warning and report false, leaving the
// caller's tree unchanged.
package graph

import (
	"log/slog"
	"slices"

	"github.com/roach88/tally/internal/accounting"
)

// Get returns the node at path.
func Get(root *accounting.Node, path []int) (*accounting.Node, bool) {
	n := root
	for _, idx := range path {
		n = n.Child(idx)
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

// Replace swaps the node at path for the given node and rebuilds every
// group above it. Replacing at the empty path returns node itself.
func Replace(root *accounting.Node, path []int, node *accounting.Node) (*accounting.Node, bool) {
	if len(path) == 0 {
		return node, true
	}
	g, ok := root.Group()
	if !ok {
		slog.Warn("replace parent is not a group", "path", path)
		return nil, false
	}
	idx := path[0]
	if idx < 0 || idx >= len(g.Children) {
		slog.Warn("replace index is out of bounds", "index", idx, "children", len(g.Children))
		return nil, false
	}
	child, ok := Replace(g.Children[idx], path[1:], node)
	if !ok {
		return nil, false
	}
	g.Children = withChild(g.Children, idx, child)
	return accounting.NewGroupNode(g), true
}

// Remove deletes the node at path, returning the new root and the
// removed node. The root itself cannot be removed.
func Remove(root *accounting.Node, path []int) (newRoot, removed *accounting.Node, ok bool) {
	if len(path) == 0 {
		slog.Warn("cannot remove the root node")
		return nil, nil, false
	}
	g, ok := root.Group()
	if !ok {
		slog.Warn("remove parent is not a group", "path", path)
		return nil, nil, false
	}
	idx := path[0]
	if idx < 0 || idx >= len(g.Children) {
		slog.Warn("remove index is out of bounds", "index", idx, "children", len(g.Children))
		return nil, nil, false
	}
	if len(path) == 1 {
		removed = g.Children[idx]
		g.Children = slices.Delete(slices.Clone(g.Children), idx, idx+1)
		return accounting.NewGroupNode(g), removed, true
	}
	replacement, removed, ok := Remove(g.Children[idx], path[1:])
	if !ok {
		return nil, nil, false
	}
	g.Children = withChild(g.Children, idx, replacement)
	return accounting.NewGroupNode(g), removed, true
}

// Insert places child so that it ends up at path. The final path
// element may equal the target group's child count to append.
func Insert(root *accounting.Node, path []int, child *accounting.Node) (*accounting.Node, bool) {
	if len(path) == 0 {
		slog.Warn("cannot insert at the root path")
		return nil, false
	}
	g, ok := root.Group()
	if !ok {
		slog.Warn("insert parent is not a group", "path", path)
		return nil, false
	}
	idx := path[0]
	if len(path) == 1 {
		if idx < 0 || idx > len(g.Children) {
			slog.Warn("insert index is out of bounds", "index", idx, "children", len(g.Children))
			return nil, false
		}
		g.Children = slices.Insert(slices.Clone(g.Children), idx, child)
		return accounting.NewGroupNode(g), true
	}
	if idx < 0 || idx >= len(g.Children) {
		slog.Warn("insert path is out of bounds", "index", idx, "children", len(g.Children))
		return nil, false
	}
	replacement, ok := Insert(g.Children[idx], path[1:], child)
	if !ok {
		return nil, false
	}
	g.Children = withChild(g.Children, idx, replacement)
	return accounting.NewGroupNode(g), true
}

// Move relocates the node at src to dest. Both paths are relative to
// root. When src and dest are siblings of the same group, dest names a
// position in the child list as it was before the move, so moving a
// node further down its own group lands exactly at the named slot.
func Move(root *accounting.Node, src, dest []int) (*accounting.Node, bool) {
	if len(src) == 0 || len(dest) == 0 {
		slog.Warn("move requires non-empty paths", "src", src, "dest", dest)
		return nil, false
	}
	shared := commonPrefix(src, dest)
	if shared == len(src) && len(dest) > len(src) {
		slog.Warn("cannot move a node into its own subtree", "src", src, "dest", dest)
		return nil, false
	}
	// The lowest common ancestor is the deepest group whose path is a
	// proper prefix of both src and dest.
	depth := min(shared, len(src)-1, len(dest)-1)

	ancestor, ok := Get(root, src[:depth])
	if !ok {
		slog.Warn("move ancestor path is invalid", "path", src[:depth])
		return nil, false
	}
	g, ok := ancestor.Group()
	if !ok {
		slog.Warn("move ancestor is not a group", "path", src[:depth])
		return nil, false
	}
	moved, ok := moveChild(g, src[depth:], dest[depth:])
	if !ok {
		return nil, false
	}
	return Replace(root, src[:depth], accounting.NewGroupNode(moved))
}

// moveChild moves a node between two positions under the same group.
// Both paths are relative to g and share no common ancestor below it.
func moveChild(g accounting.Group, src, dest []int) (accounting.Group, bool) {
	srcFirst, destFirst := src[0], dest[0]
	if len(src) == 1 && srcFirst < destFirst {
		// Removing src shifts the later siblings down one.
		destFirst--
	}
	if srcFirst < 0 || srcFirst >= len(g.Children) {
		slog.Warn("move source is out of bounds", "index", srcFirst, "children", len(g.Children))
		return accounting.Group{}, false
	}

	children := slices.Clone(g.Children)
	var moved *accounting.Node
	if len(src) == 1 {
		moved = children[srcFirst]
		children = slices.Delete(children, srcFirst, srcFirst+1)
	} else {
		replacement, m, ok := Remove(children[srcFirst], src[1:])
		if !ok {
			return accounting.Group{}, false
		}
		children[srcFirst] = replacement
		moved = m
	}

	if len(dest) == 1 {
		if destFirst < 0 || destFirst > len(children) {
			slog.Warn("move destination is out of bounds", "index", destFirst, "children", len(children))
			return accounting.Group{}, false
		}
		children = slices.Insert(children, destFirst, moved)
	} else {
		if destFirst < 0 || destFirst >= len(children) {
			slog.Warn("move destination is out of bounds", "index", destFirst, "children", len(children))
			return accounting.Group{}, false
		}
		replacement, ok := Insert(children[destFirst], dest[1:], moved)
		if !ok {
			return accounting.Group{}, false
		}
		children[destFirst] = replacement
	}

	g.Children = children
	return g, true
}

// CanDropInto reports whether a node dragged from src may be dropped
// into the group at target. A node cannot be dropped into itself or
// into one of its own descendants.
func CanDropInto(src, target []int) bool {
	return len(src) > len(target) || !slices.Equal(src, target[:len(src)])
}

// StaysInPlace reports whether inserting the node from src at position
// insertPos of the group at target leaves it where it already is.
// Inserting a node directly before or directly after itself is such a
// no-op.
func StaysInPlace(src, target []int, insertPos int) bool {
	if len(src) != len(target)+1 || !slices.Equal(src[:len(target)], target) {
		return false
	}
	childIdx := src[len(src)-1]
	return insertPos == childIdx || insertPos == childIdx+1
}

func commonPrefix(a, b []int) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func withChild(children []*accounting.Node, idx int, child *accounting.Node) []*accounting.Node {
	out := slices.Clone(children)
	out[idx] = child
	return out
}
