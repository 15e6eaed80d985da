package accounting

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/tally/internal/gamedb"
)

// NodeKind is the payload of a node, either a Group or a Building. It
// is a sealed interface.
type NodeKind interface {
	nodeKind() // Sealed.
}

// Group collects child nodes. Its balance is the sum of its
// children's balances.
type Group struct {
	// Name of the group. May be empty.
	Name string
	// Children in display order.
	Children []*Node
	// Copies multiplies the aggregated balance. Conceptually a whole
	// number of identical groups. Zero disables the group.
	Copies float64
	// ID identifies the group across edits and saves, even when
	// nodes are shared between trees. Metadata kept outside the tree
	// is keyed by this id.
	ID uuid.UUID
}

func (Group) nodeKind() {}

// Building is a single configured building.
type Building struct {
	// Building type in the database. Empty means the building is
	// unconfigured and has an empty balance.
	Building gamedb.BuildingID
	// Settings for the building. The settings kind must match the
	// kind of the building type.
	Settings Settings
	// Copies multiplies the balance. Fractional values model a row
	// of machines where the last one runs at a partial clock.
	Copies float64
}

func (Building) nodeKind() {}

// NewGroup returns an empty group with one copy and a fresh id.
func NewGroup() Group {
	return Group{Copies: 1, ID: uuid.New()}
}

// NewBuilding returns an unconfigured building with one copy. The
// settings default to a power consumer until a building type is
// chosen.
func NewBuilding() Building {
	return Building{Settings: PowerConsumerSettings{}, Copies: 1}
}

// Node is one entry in a factory tree: a group of other nodes or a
// single building. Each node caches its balance, so a parent's
// balance is the cheap sum of its children.
//
// Nodes are immutable and freely shared between trees. Modifying one
// means building a new node, which rebuilds the chain of parents up
// to the root.
type Node struct {
	kind    NodeKind
	balance Balance
	warning *BuildError

	// childrenHadWarnings caches whether any descendant carries a
	// warning. Never serialized, recomputed on decode.
	childrenHadWarnings bool
}

// NewGroupNode wraps a group in a node. The balance aggregates the
// cached balances of the children, scaled by the group's copies.
func NewGroupNode(g Group) *Node {
	balance := Balance{}
	for _, child := range g.Children {
		balance = balance.Add(child.Balance())
	}
	return &Node{
		kind:                g,
		balance:             balance.Scale(g.Copies),
		childrenHadWarnings: checkChildWarnings(g),
	}
}

// NewBuildingNode builds a node for the building against the
// database. When the balance cannot be computed, the error describes
// why and the returned node carries it as a warning with an empty
// balance, so callers choose between rejecting the change and keeping
// the degraded node.
func NewBuildingNode(b Building, db *gamedb.Database) (*Node, error) {
	balance, err := buildingBalance(b, db)
	if err != nil {
		warning, _ := AsBuildError(err)
		return &Node{kind: b, warning: warning}, err
	}
	return &Node{kind: b, balance: balance}, nil
}

// buildingBalance computes the balance of a building node, scaled by
// its copies.
func buildingBalance(b Building, db *gamedb.Database) (Balance, error) {
	if b.Building == "" {
		return Balance{}, nil
	}
	bt, ok := db.Building(b.Building)
	if !ok {
		return Balance{}, NewUnknownBuilding(b.Building)
	}
	settings := b.Settings
	if settings == nil {
		settings = PowerConsumerSettings{}
	}
	if bt.Kind == nil {
		return Balance{}, NewMismatchedKind(settings.KindID(), "")
	}
	balance, err := settings.Balance(b.Building, bt.Kind, db)
	if err != nil {
		return Balance{}, err
	}
	return balance.Scale(b.Copies), nil
}

// checkChildWarnings reports whether any child of the kind carries or
// contains a warning. Only groups have children.
func checkChildWarnings(kind NodeKind) bool {
	g, ok := kind.(Group)
	if !ok {
		return false
	}
	for _, child := range g.Children {
		if child.warning != nil || child.childrenHadWarnings {
			return true
		}
	}
	return false
}

// Kind returns the node's payload.
func (n *Node) Kind() NodeKind { return n.kind }

// Balance returns the cached balance of this node.
func (n *Node) Balance() Balance { return n.balance }

// Warning returns the build error this node was degraded with, or
// nil if the node built cleanly.
func (n *Node) Warning() *BuildError { return n.warning }

// ChildrenHadWarnings reports whether any descendant of this node,
// not the node itself, carries a warning. Always false for buildings.
func (n *Node) ChildrenHadWarnings() bool { return n.childrenHadWarnings }

// Group returns the group payload, if this node is a group.
func (n *Node) Group() (Group, bool) {
	g, ok := n.kind.(Group)
	return g, ok
}

// Building returns the building payload, if this node is a building.
func (n *Node) Building() (Building, bool) {
	b, ok := n.kind.(Building)
	return b, ok
}

// Children returns this node's children, nil for buildings. The
// returned slice is shared and must not be modified.
func (n *Node) Children() []*Node {
	if g, ok := n.kind.(Group); ok {
		return g.Children
	}
	return nil
}

// Child returns the child at the index, or nil when out of range.
func (n *Node) Child(index int) *Node {
	children := n.Children()
	if index < 0 || index >= len(children) {
		return nil
	}
	return children[index]
}

// Walk visits this node and its descendants depth first, parents
// before children. It stops early when visit returns false.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, child := range n.Children() {
		if !child.Walk(visit) {
			return false
		}
	}
	return true
}

// GroupCopyVisitor observes every group copied by CopyWithVisitor
// together with its fresh copy. It runs after the group's children
// have been copied, and may adjust the copy or carry over data kept
// outside the tree, such as metadata.
type GroupCopyVisitor func(original Group, copy *Group)

// Copy returns a true copy of this node. Copied groups receive fresh
// ids, so the copy can live in the same tree as the original.
// Buildings have no identity and are shared as-is.
func (n *Node) Copy() *Node {
	return n.CopyWithVisitor(nil)
}

// CopyWithVisitor is Copy with a visitor invoked for every copied
// group.
func (n *Node) CopyWithVisitor(visit GroupCopyVisitor) *Node {
	g, ok := n.kind.(Group)
	if !ok {
		return n
	}
	out := Group{
		Name:   g.Name,
		Copies: g.Copies,
		ID:     uuid.New(),
	}
	if g.Children != nil {
		out.Children = make([]*Node, len(g.Children))
		for i, child := range g.Children {
			out.Children[i] = child.CopyWithVisitor(visit)
		}
	}
	if visit != nil {
		visit(g, &out)
	}
	return NewGroupNode(out)
}

// Rebuild recomputes this node and every descendant against a
// database. Build failures degrade to warning nodes instead of
// failing the tree, so a save loads even when the database no longer
// knows some of its buildings.
func (n *Node) Rebuild(db *gamedb.Database) *Node {
	switch kind := n.kind.(type) {
	case Group:
		g := kind
		if kind.Children != nil {
			g.Children = make([]*Node, len(kind.Children))
			for i, child := range kind.Children {
				g.Children[i] = child.Rebuild(db)
			}
		}
		return NewGroupNode(g)
	case Building:
		node, _ := NewBuildingNode(kind, db)
		return node
	default:
		return n
	}
}

// Node kind discriminators in the wire format.
const (
	nodeKindGroup    = "Group"
	nodeKindBuilding = "Building"
)

// groupNodeJSON is the wire form of a group node.
type groupNodeJSON struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name"`
	Children []*Node     `json:"children"`
	Copies   float64     `json:"copies"`
	ID       uuid.UUID   `json:"id"`
	Balance  Balance     `json:"balance"`
	Warning  *BuildError `json:"warning,omitempty"`
}

// buildingNodeJSON is the wire form of a building node.
type buildingNodeJSON struct {
	Kind     string            `json:"kind"`
	Building gamedb.BuildingID `json:"building,omitempty"`
	Settings json.RawMessage   `json:"settings,omitempty"`
	Copies   float64           `json:"copies"`
	Balance  Balance           `json:"balance"`
	Warning  *BuildError       `json:"warning,omitempty"`
}

// MarshalJSON implements json.Marshaler. Nodes use a flat envelope
// with a "kind" discriminator, like settings and building kinds.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch kind := n.kind.(type) {
	case Group:
		children := kind.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal(groupNodeJSON{
			Kind:     nodeKindGroup,
			Name:     kind.Name,
			Children: children,
			Copies:   kind.Copies,
			ID:       kind.ID,
			Balance:  n.balance,
			Warning:  n.warning,
		})
	case Building:
		var settings json.RawMessage
		if kind.Settings != nil {
			var err error
			settings, err = marshalSettings(kind.Settings)
			if err != nil {
				return nil, err
			}
		}
		return json.Marshal(buildingNodeJSON{
			Kind:     nodeKindBuilding,
			Building: kind.Building,
			Settings: settings,
			Copies:   kind.Copies,
			Balance:  n.balance,
			Warning:  n.warning,
		})
	case nil:
		return nil, fmt.Errorf("node kind is nil")
	default:
		return nil, fmt.Errorf("unknown node kind %T", kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Missing copies default
// to 1 for saves from before the field existed. The cached
// children-warnings flag is recomputed rather than read.
func (n *Node) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("probing node kind: %w", err)
	}
	switch probe.Kind {
	case nodeKindGroup:
		raw := groupNodeJSON{Copies: 1}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decoding group node: %w", err)
		}
		g := Group{
			Name:   raw.Name,
			Copies: raw.Copies,
			ID:     raw.ID,
		}
		if len(raw.Children) > 0 {
			g.Children = raw.Children
		}
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		*n = Node{
			kind:                g,
			balance:             raw.Balance,
			warning:             raw.Warning,
			childrenHadWarnings: checkChildWarnings(g),
		}
		return nil
	case nodeKindBuilding:
		raw := buildingNodeJSON{Copies: 1}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decoding building node: %w", err)
		}
		b := Building{
			Building: raw.Building,
			Copies:   raw.Copies,
			Settings: PowerConsumerSettings{},
		}
		if len(raw.Settings) > 0 {
			settings, err := unmarshalSettings(raw.Settings)
			if err != nil {
				return fmt.Errorf("decoding building node: %w", err)
			}
			b.Settings = settings
		}
		*n = Node{kind: b, balance: raw.Balance, warning: raw.Warning}
		return nil
	case "":
		return fmt.Errorf("node envelope is missing the %q field", "kind")
	default:
		return fmt.Errorf("unknown node kind %q", probe.Kind)
	}
}
