package plan

import (
	"fmt"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/world"
)

// Build compiles the plan into a world backed by its chosen database
// version.
func (p *Plan) Build() (*world.World, error) {
	choice, err := p.databaseChoice()
	if err != nil {
		return nil, err
	}
	db, err := choice.Load()
	if err != nil {
		return nil, err
	}
	root, metas, err := p.Compile(db)
	if err != nil {
		return nil, err
	}
	return &world.World{Database: choice, Root: root, Metas: metas}, nil
}

// Compile builds the plan's node tree against a database. The
// returned metadata records which groups the plan collapses.
func (p *Plan) Compile(db *gamedb.Database) (*accounting.Node, world.NodeMetas, error) {
	metas := world.NodeMetas{}
	children, err := compileChildren(p.Nodes, db, "nodes", metas)
	if err != nil {
		return nil, nil, err
	}
	root := accounting.NewGroup()
	root.Name = p.Name
	root.Children = children
	return accounting.NewGroupNode(root), metas, nil
}

func (p *Plan) databaseChoice() (world.DatabaseChoice, error) {
	if p.Database == "" {
		return world.DefaultDatabaseChoice(), nil
	}
	version := gamedb.VersionID(p.Database)
	if _, ok := gamedb.LookupVersion(version); !ok {
		return world.DatabaseChoice{}, &gamedb.UnknownVersionError{ID: version}
	}
	return world.StandardDatabase(version), nil
}

func compileChildren(nodes []Node, db *gamedb.Database, path string, metas world.NodeMetas) ([]*accounting.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	children := make([]*accounting.Node, len(nodes))
	for i, n := range nodes {
		child, err := compileNode(n, db, fmt.Sprintf("%s[%d]", path, i), metas)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}

func compileNode(n Node, db *gamedb.Database, path string, metas world.NodeMetas) (*accounting.Node, error) {
	if n.Building != "" {
		return compileBuilding(n, db, path)
	}
	return compileGroup(n, db, path, metas)
}

func compileGroup(n Node, db *gamedb.Database, path string, metas world.NodeMetas) (*accounting.Node, error) {
	if field, ok := buildingOnlyField(n); ok {
		return nil, fmt.Errorf("%s: %s requires a building", path, field)
	}
	g := accounting.NewGroup()
	g.Name = n.Name
	if n.Copies != nil {
		if *n.Copies < 0 {
			return nil, fmt.Errorf("%s: copies cannot be negative", path)
		}
		g.Copies = *n.Copies
	}
	children, err := compileChildren(n.Children, db, path+".children", metas)
	if err != nil {
		return nil, err
	}
	g.Children = children
	if n.Collapsed {
		metas.SetMeta(g.ID, world.NodeMeta{Collapsed: true})
	}
	return accounting.NewGroupNode(g), nil
}

// buildingOnlyField reports the first field set on a group node that
// only applies to buildings.
func buildingOnlyField(n Node) (string, bool) {
	switch {
	case n.Recipe != "":
		return "recipe", true
	case n.Resource != "":
		return "resource", true
	case n.Fuel != "":
		return "fuel", true
	case n.Target != "":
		return "target", true
	case n.Purity != "":
		return "purity", true
	case n.Clock != nil:
		return "clock", true
	case n.Rate != nil:
		return "rate", true
	case n.PurePads != nil || n.NormalPads != nil || n.ImpurePads != nil:
		return "pads", true
	}
	return "", false
}

func compileBuilding(n Node, db *gamedb.Database, path string) (*accounting.Node, error) {
	switch {
	case n.Name != "":
		return nil, fmt.Errorf("%s: buildings have no name", path)
	case len(n.Children) > 0:
		return nil, fmt.Errorf("%s: buildings have no children", path)
	case n.Collapsed:
		return nil, fmt.Errorf("%s: collapsed applies to groups", path)
	}

	id := gamedb.BuildingID(n.Building)
	bt, ok := db.Building(id)
	if !ok {
		return nil, fmt.Errorf("%s: unknown building %q", path, n.Building)
	}
	settings, err := compileSettings(n, bt.Kind, path)
	if err != nil {
		return nil, err
	}

	b := accounting.NewBuilding()
	b.Building = id
	b.Settings = settings
	if n.Copies != nil {
		if *n.Copies < 0 {
			return nil, fmt.Errorf("%s: copies cannot be negative", path)
		}
		b.Copies = *n.Copies
	}
	node, err := accounting.NewBuildingNode(b, db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// compileSettings starts from the default settings for the building's
// kind and applies each configured plan field, rejecting fields the
// kind does not take.
func compileSettings(n Node, kind gamedb.BuildingKind, path string) (accounting.Settings, error) {
	settings := accounting.DefaultSettings(kind)
	if settings == nil {
		return nil, fmt.Errorf("%s: building %q has no kind", path, n.Building)
	}

	if n.Recipe != "" {
		ms, ok := settings.(accounting.ManufacturerSettings)
		if !ok {
			return nil, fmt.Errorf("%s: a %s does not take a recipe", path, settings.KindID())
		}
		ms.Recipe = gamedb.RecipeID(n.Recipe)
		settings = ms
	}

	if n.Resource != "" {
		switch s := settings.(type) {
		case accounting.MinerSettings:
			s.Resource = gamedb.ItemID(n.Resource)
			settings = s
		case accounting.PumpSettings:
			s.Resource = gamedb.ItemID(n.Resource)
			settings = s
		default:
			return nil, fmt.Errorf("%s: a %s does not take a resource", path, settings.KindID())
		}
	}

	if n.Fuel != "" {
		switch s := settings.(type) {
		case accounting.GeneratorSettings:
			s.Fuel = gamedb.ItemID(n.Fuel)
			settings = s
		case accounting.StationSettings:
			s.Fuel = gamedb.ItemID(n.Fuel)
			settings = s
		default:
			return nil, fmt.Errorf("%s: a %s does not take a fuel", path, settings.KindID())
		}
	}

	if n.Target != "" {
		bas, ok := settings.(accounting.BalanceAdjustmentSettings)
		if !ok {
			return nil, fmt.Errorf("%s: a %s does not take a target", path, settings.KindID())
		}
		if n.Target == "power" {
			bas.Target = gamedb.PowerTarget
		} else {
			bas.Target = gamedb.ItemTarget(gamedb.ItemID(n.Target))
		}
		settings = bas
	}

	if n.Purity != "" {
		purity, err := accounting.ParsePurity(n.Purity)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		switch s := settings.(type) {
		case accounting.MinerSettings:
			s.Purity = purity
			settings = s
		case accounting.GeothermalSettings:
			s.Purity = purity
			settings = s
		default:
			return nil, fmt.Errorf("%s: a %s does not take a purity", path, settings.KindID())
		}
	}

	if n.PurePads != nil || n.NormalPads != nil || n.ImpurePads != nil {
		ps, ok := settings.(accounting.PumpSettings)
		if !ok {
			return nil, fmt.Errorf("%s: a %s does not take pad counts", path, settings.KindID())
		}
		for _, pads := range []struct {
			name  string
			count *int
			field *int
		}{
			{"pure_pads", n.PurePads, &ps.PurePads},
			{"normal_pads", n.NormalPads, &ps.NormalPads},
			{"impure_pads", n.ImpurePads, &ps.ImpurePads},
		} {
			if pads.count == nil {
				continue
			}
			if *pads.count < 0 {
				return nil, fmt.Errorf("%s: %s cannot be negative", path, pads.name)
			}
			*pads.field = *pads.count
		}
		settings = ps
	}

	if n.Rate != nil {
		switch s := settings.(type) {
		case accounting.StationSettings:
			s.Consumption = *n.Rate
			settings = s
		case accounting.BalanceAdjustmentSettings:
			s.Rate = *n.Rate
			settings = s
		default:
			return nil, fmt.Errorf("%s: a %s does not take a rate", path, settings.KindID())
		}
	}

	if n.Clock != nil {
		switch settings.(type) {
		case accounting.ManufacturerSettings, accounting.MinerSettings,
			accounting.GeneratorSettings, accounting.PumpSettings:
			if *n.Clock < accounting.MinClockSpeed || *n.Clock > accounting.MaxClockSpeed {
				return nil, fmt.Errorf("%s: clock speed %v is outside %v to %v",
					path, *n.Clock, accounting.MinClockSpeed, accounting.MaxClockSpeed)
			}
			settings = settings.WithClockSpeed(*n.Clock)
		default:
			return nil, fmt.Errorf("%s: a %s does not take a clock speed", path, settings.KindID())
		}
	}

	return settings, nil
}
