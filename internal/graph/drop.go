package graph

// Extent is the rendered vertical extent of one child of a group.
type Extent struct {
	// Top is the child's upper edge.
	Top float64
	// Height of the child.
	Height float64
}

// Midpoint returns the vertical center of the extent.
func (e Extent) Midpoint() float64 {
	return e.Top + e.Height/2
}

// InsertChooser resolves drop positions for dragging a node into one
// group. ChildExtents holds the rendered extent of each child in
// child order; HostPath addresses the group itself.
type InsertChooser struct {
	ChildExtents []Extent
	HostPath     []int
}

// ChooseInsertPos picks the insert position for dropping the node at
// src at vertical position dropY. The chosen index is the number of
// children whose midpoint lies above the drop point, so a drop below
// every child appends. stayInPlace reports that the position leaves
// the dragged node where it already is; such a drop is still a valid
// no-op, callers merely hide the insert marker for it. ok is false
// when the node cannot be dropped here at all, which is the case when
// the group is the dragged node itself or one of its descendants.
func (c InsertChooser) ChooseInsertPos(src []int, dropY float64) (idx int, stayInPlace, ok bool) {
	if !CanDropInto(src, c.HostPath) {
		return 0, false, false
	}
	for _, extent := range c.ChildExtents {
		if dropY < extent.Midpoint() {
			break
		}
		idx++
	}
	return idx, StaysInPlace(src, c.HostPath, idx), true
}
