package world

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/backdrive"
	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/graph"
)

// maxUndo bounds the undo history. Once full, the oldest step is
// dropped for each new one recorded.
const maxUndo = 100

// snapshot is one undo or redo step: the tree root and the database
// choice it was built against. Nodes are immutable, so a snapshot is
// two pointer-sized fields. Display metadata is deliberately not
// part of a snapshot.
type snapshot struct {
	choice DatabaseChoice
	root   *accounting.Node
}

// Manager owns a world while it is being edited. It applies tree
// edits, keeps bounded undo and redo history, and tracks whether the
// world has changed since it was last saved.
//
// Edits mirror the permissiveness of the tree itself: an edit that
// cannot be applied, such as a path that does not exist or a recipe
// the building does not allow, logs a warning and reports false,
// leaving the world exactly as it was.
type Manager struct {
	world *World
	db    *gamedb.Database
	undo  []snapshot
	redo  []snapshot
	dirty bool
}

// NewManager opens a world for editing. The world's database is
// loaded, the tree is rebuilt against it, and metadata for groups no
// longer in the tree is pruned. A nil world opens a fresh empty one.
func NewManager(w *World) (*Manager, error) {
	if w == nil {
		w = New()
	}
	db, err := w.PostLoad()
	if err != nil {
		return nil, err
	}
	if w.Metas == nil {
		w.Metas = NodeMetas{}
	}
	w.Metas.Prune(w.Root)
	return &Manager{world: w, db: db}, nil
}

// World returns the managed world.
func (m *Manager) World() *World { return m.world }

// Root returns the current tree root.
func (m *Manager) Root() *accounting.Node { return m.world.Root }

// Database returns the loaded database the tree is built against.
func (m *Manager) Database() *gamedb.Database { return m.db }

// Choice returns the current database choice.
func (m *Manager) Choice() DatabaseChoice { return m.world.Database }

// Name returns the world's name.
func (m *Manager) Name() string { return m.world.Name() }

// Dirty reports whether the world has changed since it was opened or
// last marked saved.
func (m *Manager) Dirty() bool { return m.dirty }

// MarkSaved records that the world was persisted in its current
// state.
func (m *Manager) MarkSaved() { m.dirty = false }

// CanUndo reports whether there is anything to undo.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether there is anything to redo.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// pushUndo records the current state as an undo step. Recording a
// new step invalidates any redo history.
func (m *Manager) pushUndo() {
	m.redo = m.redo[:0]
	if drop := len(m.undo) - (maxUndo - 1); drop > 0 {
		if drop > 1 {
			slog.Warn("undo history exceeded its limit", "dropped", drop)
		}
		m.undo = append(m.undo[:0], m.undo[drop:]...)
	}
	m.undo = append(m.undo, snapshot{choice: m.world.Database, root: m.world.Root})
}

// apply restores a snapshot and returns the state it replaced. The
// database is reloaded when the snapshot changes the choice.
func (m *Manager) apply(s snapshot) (snapshot, error) {
	prev := snapshot{choice: m.world.Database, root: m.world.Root}
	if !s.choice.Equal(m.world.Database) {
		db, err := s.choice.Load()
		if err != nil {
			return snapshot{}, err
		}
		m.db = db
	}
	m.world.Database = s.choice
	m.world.Root = s.root
	return prev, nil
}

// Undo restores the most recent undo step. It reports whether there
// was anything to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		slog.Warn("nothing to undo")
		return false
	}
	prev, err := m.apply(m.undo[len(m.undo)-1])
	if err != nil {
		slog.Warn("unable to restore undo state", "error", err)
		return false
	}
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, prev)
	m.dirty = true
	return true
}

// Redo reapplies the most recently undone step. It reports whether
// there was anything to redo.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		slog.Warn("nothing to redo")
		return false
	}
	prev, err := m.apply(m.redo[len(m.redo)-1])
	if err != nil {
		slog.Warn("unable to restore redo state", "error", err)
		return false
	}
	m.redo = m.redo[:len(m.redo)-1]
	// Appending directly keeps the remaining redo steps, which
	// pushUndo would clear.
	m.undo = append(m.undo, prev)
	m.dirty = true
	return true
}

// commit replaces the root, recording the previous state for undo.
func (m *Manager) commit(root *accounting.Node) {
	m.pushUndo()
	m.world.Root = root
	m.dirty = true
}

// SetRoot replaces the entire tree. The new root must be a group.
func (m *Manager) SetRoot(root *accounting.Node) bool {
	if root == nil {
		slog.Warn("cannot set a nil root")
		return false
	}
	if _, ok := root.Group(); !ok {
		slog.Warn("new root is not a group")
		return false
	}
	m.commit(root)
	return true
}

// SetDatabase switches the world to a different database choice and
// rebuilds the tree against it. Buildings the new database does not
// know degrade to warning nodes rather than blocking the switch.
func (m *Manager) SetDatabase(choice DatabaseChoice) error {
	db, err := choice.Load()
	if err != nil {
		return err
	}
	m.pushUndo()
	m.db = db
	m.world.Database = choice
	m.world.Root = m.world.Root.Rebuild(db)
	m.dirty = true
	return nil
}

// ReplaceNode swaps the node at path for a replacement.
func (m *Manager) ReplaceNode(path []int, node *accounting.Node) bool {
	if node == nil {
		slog.Warn("cannot replace a node with nil", "path", path)
		return false
	}
	if len(path) == 0 {
		return m.SetRoot(node)
	}
	return m.replaceAt(path, node)
}

// replaceAt commits a replacement already validated by the caller.
func (m *Manager) replaceAt(path []int, node *accounting.Node) bool {
	root, ok := graph.Replace(m.world.Root, path, node)
	if !ok {
		return false
	}
	m.commit(root)
	return true
}

// DeleteNode removes the node at path from the tree.
func (m *Manager) DeleteNode(path []int) bool {
	root, _, ok := graph.Remove(m.world.Root, path)
	if !ok {
		return false
	}
	m.commit(root)
	return true
}

// InsertNode inserts a node at path, shifting later siblings over.
// The last path element may equal the parent's child count to
// append.
func (m *Manager) InsertNode(path []int, node *accounting.Node) bool {
	if node == nil {
		slog.Warn("cannot insert a nil node", "path", path)
		return false
	}
	root, ok := graph.Insert(m.world.Root, path, node)
	if !ok {
		return false
	}
	m.commit(root)
	return true
}

// AddChild appends a node to the group at parentPath.
func (m *Manager) AddChild(parentPath []int, node *accounting.Node) bool {
	if node == nil {
		slog.Warn("cannot add a nil child", "path", parentPath)
		return false
	}
	parent, ok := graph.Get(m.world.Root, parentPath)
	if !ok {
		slog.Warn("no node at path", "op", "add child", "path", parentPath)
		return false
	}
	g, ok := parent.Group()
	if !ok {
		slog.Warn("cannot add a child to a non-group", "path", parentPath)
		return false
	}
	dest := append(slices.Clone(parentPath), len(g.Children))
	return m.InsertNode(dest, node)
}

// MoveNode moves the node at src to dest. Both paths are given in
// the current tree.
func (m *Manager) MoveNode(src, dest []int) bool {
	root, ok := graph.Move(m.world.Root, src, dest)
	if !ok {
		return false
	}
	m.commit(root)
	return true
}

// CopyChild duplicates the node at path and inserts the copy as its
// next sibling. Copied groups receive fresh ids and inherit the
// originals' display metadata.
func (m *Manager) CopyChild(path []int) bool {
	if len(path) == 0 {
		slog.Warn("cannot copy the root node")
		return false
	}
	node, ok := graph.Get(m.world.Root, path)
	if !ok {
		slog.Warn("no node at path", "op", "copy", "path", path)
		return false
	}
	carried := map[uuid.UUID]NodeMeta{}
	copied := node.CopyWithVisitor(func(original accounting.Group, copy *accounting.Group) {
		carried[copy.ID] = m.world.Metas.Meta(original.ID)
	})
	dest := append(slices.Clone(path[:len(path)-1]), path[len(path)-1]+1)
	root, ok := graph.Insert(m.world.Root, dest, copied)
	if !ok {
		return false
	}
	m.commit(root)
	m.world.Metas.BatchUpdate(carried)
	return true
}

// Rename sets the name of the group at path.
func (m *Manager) Rename(path []int, name string) bool {
	node, ok := graph.Get(m.world.Root, path)
	if !ok {
		slog.Warn("no node at path", "op", "rename", "path", path)
		return false
	}
	g, ok := node.Group()
	if !ok {
		slog.Warn("cannot rename a non-group", "path", path)
		return false
	}
	g.Name = name
	return m.replaceAt(path, accounting.NewGroupNode(g))
}

// SetCopies sets the copy count of the node at path. Negative counts
// are made positive.
func (m *Manager) SetCopies(path []int, copies float64) bool {
	node, ok := graph.Get(m.world.Root, path)
	if !ok {
		slog.Warn("no node at path", "op", "set copies", "path", path)
		return false
	}
	copies = math.Abs(copies)
	switch kind := node.Kind().(type) {
	case accounting.Group:
		kind.Copies = copies
		return m.replaceAt(path, accounting.NewGroupNode(kind))
	case accounting.Building:
		kind.Copies = copies
		return m.replaceBuilding(path, kind)
	default:
		slog.Warn("node kind does not support copies", "path", path)
		return false
	}
}

// replaceBuilding rebuilds a building node and commits it. An edit
// that would break the building is rejected rather than degraded.
func (m *Manager) replaceBuilding(path []int, b accounting.Building) bool {
	node, err := accounting.NewBuildingNode(b, m.db)
	if err != nil {
		slog.Warn("unable to build node", "error", err)
		return false
	}
	return m.replaceAt(path, node)
}

// buildingAt fetches the building at path for an edit.
func (m *Manager) buildingAt(path []int, op string) (accounting.Building, bool) {
	node, ok := graph.Get(m.world.Root, path)
	if !ok {
		slog.Warn("no node at path", "op", op, "path", path)
		return accounting.Building{}, false
	}
	b, ok := node.Building()
	if !ok {
		slog.Warn("node is not a building", "op", op, "path", path)
		return accounting.Building{}, false
	}
	return b, true
}

// ChangeBuilding changes the building type of the node at path,
// migrating compatible settings from the old type to the new one.
func (m *Manager) ChangeBuilding(path []int, id gamedb.BuildingID) bool {
	b, ok := m.buildingAt(path, "change building")
	if !ok {
		return false
	}
	if b.Building == id {
		return false
	}
	bt, ok := m.db.Building(id)
	if !ok {
		slog.Warn("new building type is unknown", "building", id)
		return false
	}
	b.Building = id
	b.Settings = accounting.MigrateSettings(b.Settings, bt.Kind)
	return m.replaceBuilding(path, b)
}

// ChangeRecipe sets the recipe of the manufacturer at path.
func (m *Manager) ChangeRecipe(path []int, id gamedb.RecipeID) bool {
	b, ok := m.buildingAt(path, "change recipe")
	if !ok {
		return false
	}
	kind, ok := m.buildingKind(b, "change recipe")
	if !ok {
		return false
	}
	mf, ok := kind.(gamedb.Manufacturer)
	if !ok {
		slog.Warn("cannot change recipe of a non-manufacturer", "building", b.Building)
		return false
	}
	if !slices.Contains(mf.AvailableRecipes, id) {
		slog.Warn("recipe is not available for building", "recipe", id, "building", b.Building)
		return false
	}
	if ms, ok := b.Settings.(accounting.ManufacturerSettings); ok {
		ms.Recipe = id
		b.Settings = ms
	} else {
		slog.Warn("settings kind did not match building kind", "building", b.Building)
		b.Settings = accounting.ManufacturerSettings{Recipe: id, Clock: settingsClock(b.Settings)}
	}
	return m.replaceBuilding(path, b)
}

// ChangeItem sets the resource or fuel of the extractor, generator,
// or station at path.
func (m *Manager) ChangeItem(path []int, id gamedb.ItemID) bool {
	b, ok := m.buildingAt(path, "change item")
	if !ok {
		return false
	}
	kind, ok := m.buildingKind(b, "change item")
	if !ok {
		return false
	}
	switch kind := kind.(type) {
	case gamedb.Miner:
		if !slices.Contains(kind.AllowedResources, id) {
			slog.Warn("resource is not available for building", "item", id, "building", b.Building)
			return false
		}
		if ms, ok := b.Settings.(accounting.MinerSettings); ok {
			ms.Resource = id
			b.Settings = ms
		} else {
			slog.Warn("settings kind did not match building kind", "building", b.Building)
			b.Settings = accounting.MinerSettings{
				Resource: id,
				Purity:   accounting.PurityNormal,
				Clock:    settingsClock(b.Settings),
			}
		}
	case gamedb.Pump:
		if !slices.Contains(kind.AllowedResources, id) {
			slog.Warn("resource is not available for building", "item", id, "building", b.Building)
			return false
		}
		if ps, ok := b.Settings.(accounting.PumpSettings); ok {
			ps.Resource = id
			b.Settings = ps
		} else {
			slog.Warn("settings kind did not match building kind", "building", b.Building)
			b.Settings = accounting.PumpSettings{Resource: id, Clock: settingsClock(b.Settings)}
		}
	case gamedb.Generator:
		if !slices.Contains(kind.AllowedFuel, id) {
			slog.Warn("fuel is not available for building", "item", id, "building", b.Building)
			return false
		}
		if gs, ok := b.Settings.(accounting.GeneratorSettings); ok {
			gs.Fuel = id
			b.Settings = gs
		} else {
			slog.Warn("settings kind did not match building kind", "building", b.Building)
			b.Settings = accounting.GeneratorSettings{Fuel: id, Clock: settingsClock(b.Settings)}
		}
	case gamedb.Station:
		if !slices.Contains(kind.AllowedFuel, id) {
			slog.Warn("fuel is not available for building", "item", id, "building", b.Building)
			return false
		}
		if ss, ok := b.Settings.(accounting.StationSettings); ok {
			ss.Fuel = id
			b.Settings = ss
		} else {
			slog.Warn("settings kind did not match building kind", "building", b.Building)
			b.Settings = accounting.StationSettings{Fuel: id}
		}
	default:
		slog.Warn("building kind does not take an item", "building", b.Building)
		return false
	}
	return m.replaceBuilding(path, b)
}

// ChangeTarget sets the item or power target of the balance
// adjustment at path.
func (m *Manager) ChangeTarget(path []int, target gamedb.ItemOrPower) bool {
	b, ok := m.buildingAt(path, "change target")
	if !ok {
		return false
	}
	kind, ok := m.buildingKind(b, "change target")
	if !ok {
		return false
	}
	if _, ok := kind.(gamedb.BalanceAdjustment); !ok {
		slog.Warn("cannot change target of a non-adjustment", "building", b.Building)
		return false
	}
	if bas, ok := b.Settings.(accounting.BalanceAdjustmentSettings); ok {
		bas.Target = target
		b.Settings = bas
	} else {
		slog.Warn("settings kind did not match building kind", "building", b.Building)
		b.Settings = accounting.BalanceAdjustmentSettings{Target: target}
	}
	return m.replaceBuilding(path, b)
}

// ChangeClock sets the clock speed of the building at path, clamped
// to the valid range. Setting the current speed is a no-op.
func (m *Manager) ChangeClock(path []int, clock float64) bool {
	b, ok := m.buildingAt(path, "change clock")
	if !ok {
		return false
	}
	settings := b.Settings
	if settings == nil {
		settings = accounting.PowerConsumerSettings{}
	}
	clock = accounting.ClampClockSpeed(clock)
	if settings.ClockSpeed() == clock {
		return false
	}
	b.Settings = settings.WithClockSpeed(clock)
	return m.replaceBuilding(path, b)
}

// ChangePurity sets the pad purity of the miner or geothermal
// generator at path.
func (m *Manager) ChangePurity(path []int, purity accounting.Purity) bool {
	b, ok := m.buildingAt(path, "change purity")
	if !ok {
		return false
	}
	if b.Building == "" {
		slog.Warn("cannot change purity, no building selected", "path", path)
		return false
	}
	switch settings := b.Settings.(type) {
	case accounting.MinerSettings:
		settings.Purity = purity
		b.Settings = settings
	case accounting.GeothermalSettings:
		settings.Purity = purity
		b.Settings = settings
	default:
		slog.Warn("building kind does not support purity", "building", b.Building)
		return false
	}
	return m.replaceBuilding(path, b)
}

// ChangePads sets the number of pads of one purity for the pump at
// path.
func (m *Manager) ChangePads(path []int, purity accounting.Purity, pads int) bool {
	b, ok := m.buildingAt(path, "change pads")
	if !ok {
		return false
	}
	if b.Building == "" {
		slog.Warn("cannot change pads, no building selected", "path", path)
		return false
	}
	if pads < 0 {
		slog.Warn("pad count cannot be negative", "pads", pads)
		return false
	}
	ps, ok := b.Settings.(accounting.PumpSettings)
	if !ok {
		slog.Warn("building kind does not support pad counts", "building", b.Building)
		return false
	}
	switch purity {
	case accounting.PurityPure:
		ps.PurePads = pads
	case accounting.PurityNormal:
		ps.NormalPads = pads
	case accounting.PurityImpure:
		ps.ImpurePads = pads
	default:
		slog.Warn("unknown purity", "purity", purity)
		return false
	}
	b.Settings = ps
	return m.replaceBuilding(path, b)
}

// ChangeRate sets the consumption of the station or the rate of the
// balance adjustment at path.
func (m *Manager) ChangeRate(path []int, rate float64) bool {
	b, ok := m.buildingAt(path, "change rate")
	if !ok {
		return false
	}
	if b.Building == "" {
		slog.Warn("cannot change rate, no building selected", "path", path)
		return false
	}
	switch settings := b.Settings.(type) {
	case accounting.StationSettings:
		settings.Consumption = rate
		b.Settings = settings
	case accounting.BalanceAdjustmentSettings:
		settings.Rate = rate
		b.Settings = settings
	default:
		slog.Warn("building kind does not support setting a rate", "building", b.Building)
		return false
	}
	return m.replaceBuilding(path, b)
}

// Backdrive solves the building at path for the given target rate
// and commits the solved node. Unlike the boolean edits, it returns
// an error so callers can report why solving failed.
func (m *Manager) Backdrive(solver *backdrive.Solver, path []int, target gamedb.ItemOrPower, rate float64) error {
	node, ok := graph.Get(m.world.Root, path)
	if !ok {
		return fmt.Errorf("no node at path %v", path)
	}
	solved, err := solver.Solve(node, target, rate)
	if err != nil {
		return err
	}
	if !m.ReplaceNode(path, solved) {
		return fmt.Errorf("unable to apply the solved node at path %v", path)
	}
	return nil
}

// SetMeta updates display metadata for one group. Metadata changes
// are not undoable.
func (m *Manager) SetMeta(id uuid.UUID, meta NodeMeta) {
	m.world.Metas.SetMeta(id, meta)
	m.dirty = true
}

// BatchUpdateMetas merges display metadata for several groups.
func (m *Manager) BatchUpdateMetas(updates map[uuid.UUID]NodeMeta) {
	if len(updates) == 0 {
		return
	}
	m.world.Metas.BatchUpdate(updates)
	m.dirty = true
}

// buildingKind resolves the database kind of a configured building.
func (m *Manager) buildingKind(b accounting.Building, op string) (gamedb.BuildingKind, bool) {
	if b.Building == "" {
		slog.Warn("no building selected", "op", op)
		return nil, false
	}
	bt, ok := m.db.Building(b.Building)
	if !ok {
		slog.Warn("building is not in the database", "op", op, "building", b.Building)
		return nil, false
	}
	if bt.Kind == nil {
		slog.Warn("building has no kind", "op", op, "building", b.Building)
		return nil, false
	}
	return bt.Kind, true
}

// settingsClock reads the clock speed off settings that may be nil.
func settingsClock(s accounting.Settings) float64 {
	if s == nil {
		return 1.0
	}
	return s.ClockSpeed()
}
