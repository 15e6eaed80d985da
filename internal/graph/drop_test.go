package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseInsertPos(t *testing.T) {
	// Three children stacked at y 0-10, 10-30, 30-40, so the
	// midpoints sit at 5, 20, and 35.
	chooser := InsertChooser{
		ChildExtents: []Extent{
			{Top: 0, Height: 10},
			{Top: 10, Height: 20},
			{Top: 30, Height: 10},
		},
		HostPath: []int{1},
	}
	src := []int{0}

	tests := []struct {
		name  string
		dropY float64
		idx   int
	}{
		{"above the first midpoint", 2, 0},
		{"exactly on a midpoint goes after", 5, 1},
		{"between midpoints", 12, 1},
		{"past the second midpoint", 25, 2},
		{"below every midpoint appends", 38, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, stay, ok := chooser.ChooseInsertPos(src, tc.dropY)
			assert.True(t, ok)
			assert.False(t, stay)
			assert.Equal(t, tc.idx, idx)
		})
	}
}

func TestChooseInsertPosStayInPlace(t *testing.T) {
	chooser := InsertChooser{
		ChildExtents: []Extent{
			{Top: 0, Height: 10},
			{Top: 10, Height: 10},
			{Top: 20, Height: 10},
		},
	}
	// Dragging the middle child onto the gaps around itself is a
	// no-op drop, everywhere else it moves.
	src := []int{1}

	idx, stay, ok := chooser.ChooseInsertPos(src, 7)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.True(t, stay, "inserting directly before itself")

	idx, stay, ok = chooser.ChooseInsertPos(src, 17)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.True(t, stay, "inserting directly after itself")

	idx, stay, ok = chooser.ChooseInsertPos(src, 2)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, stay)

	idx, stay, ok = chooser.ChooseInsertPos(src, 28)
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.False(t, stay)
}

func TestChooseInsertPosRejectsSelfAndDescendants(t *testing.T) {
	chooser := InsertChooser{
		ChildExtents: []Extent{{Top: 0, Height: 10}},
		HostPath:     []int{0, 1},
	}

	_, _, ok := chooser.ChooseInsertPos([]int{0, 1}, 5)
	assert.False(t, ok, "cannot drop a node into itself")

	_, _, ok = chooser.ChooseInsertPos([]int{0}, 5)
	assert.False(t, ok, "cannot drop a node into its own subtree")

	_, _, ok = chooser.ChooseInsertPos([]int{0, 2}, 5)
	assert.True(t, ok, "a sibling's child is fine")
}

func TestChooseInsertPosEmptyGroup(t *testing.T) {
	chooser := InsertChooser{HostPath: []int{2}}
	idx, stay, ok := chooser.ChooseInsertPos([]int{1}, 50)
	assert.True(t, ok)
	assert.False(t, stay)
	assert.Equal(t, 0, idx, "an empty group always inserts at zero")
}
