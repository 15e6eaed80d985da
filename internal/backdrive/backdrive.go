// Package backdrive solves building counts from requested rates. Where
// the balance of a node is a function of its copies and clock speed,
// backdriving inverts that: given a target item (or power) and the rate
// it should net, it finds the copies and clock speed that produce it.
package backdrive

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/gamedb"
)

// Mode selects how solved production is split across machines.
type Mode string

const (
	// VariableClock keeps the configured clock speed and represents
	// any remainder as a fractional machine at a reduced clock.
	VariableClock Mode = "variable"
	// UniformClock rounds up to whole machines sharing one clock
	// speed at or below the policy's maximum.
	UniformClock Mode = "uniform"
)

// ParseMode converts a flag value into a Mode. The empty string
// defaults to VariableClock.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case VariableClock, "":
		return VariableClock, nil
	case UniformClock:
		return UniformClock, nil
	default:
		return "", fmt.Errorf("unknown backdrive mode %q", s)
	}
}

// BuildingPolicy configures solving for one category of building.
type BuildingPolicy struct {
	// Mode to solve in. The zero value behaves as VariableClock.
	Mode Mode
	// UniformMaxClock caps the shared clock speed in UniformClock
	// mode.
	UniformMaxClock float64
}

// Policy holds the per-category solver settings.
type Policy struct {
	Manufacturer BuildingPolicy
	Extractor    BuildingPolicy
	Generator    BuildingPolicy
}

// DefaultPolicy returns the standard solver settings: manufacturers
// and generators keep their clock and take a fractional machine,
// extractors run whole machines up to 250%.
func DefaultPolicy() Policy {
	return Policy{
		Manufacturer: BuildingPolicy{Mode: VariableClock, UniformMaxClock: 1.0},
		Extractor:    BuildingPolicy{Mode: UniformClock, UniformMaxClock: 2.5},
		Generator:    BuildingPolicy{Mode: VariableClock, UniformMaxClock: 1.0},
	}
}

// Solver inverts node balances against a database.
type Solver struct {
	db     *gamedb.Database
	policy Policy
}

// NewSolver returns a Solver using the given database and policy.
func NewSolver(db *gamedb.Database, policy Policy) *Solver {
	return &Solver{db: db, policy: policy}
}

// Solve returns a rebuilt copy of node whose copies and clock speed
// net the requested rate for the target. The rate's sign is ignored,
// production and consumption being fixed by the building, except for
// balance adjustments where the stored rate keeps it.
func (s *Solver) Solve(node *accounting.Node, target gamedb.ItemOrPower, rate float64) (*accounting.Node, error) {
	b, ok := node.Building()
	if !ok {
		return nil, errors.New("only buildings can be backdriven")
	}
	if b.Building == "" {
		return nil, errors.New("no building selected")
	}
	bt, ok := s.db.Building(b.Building)
	if !ok {
		return nil, fmt.Errorf("building %s is not in the database", b.Building)
	}
	if bt.Kind == nil {
		return nil, fmt.Errorf("building %s has no kind", b.Building)
	}
	if target == "" {
		return nil, errors.New("no backdrive target")
	}

	settings := b.Settings
	if settings == nil {
		settings = accounting.PowerConsumerSettings{}
	}
	signed := rate
	rate = math.Abs(rate)

	var (
		copies  float64
		updated accounting.Settings
		err     error
	)
	switch st := settings.(type) {
	case accounting.ManufacturerSettings:
		m, ok := bt.Kind.(gamedb.Manufacturer)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		copies, updated, err = s.solveManufacturer(target, rate, st, m)
	case accounting.MinerSettings:
		m, ok := bt.Kind.(gamedb.Miner)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		copies, updated, err = s.solveMiner(target, rate, st, m)
	case accounting.GeneratorSettings:
		g, ok := bt.Kind.(gamedb.Generator)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		copies, updated, err = s.solveGenerator(target, rate, st, g)
	case accounting.PumpSettings:
		p, ok := bt.Kind.(gamedb.Pump)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		copies, updated, err = s.solvePump(target, rate, st, p)
	case accounting.GeothermalSettings:
		g, ok := bt.Kind.(gamedb.Geothermal)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		updated = st
		copies, err = solveGeothermal(target, rate, st, g)
	case accounting.PowerConsumerSettings:
		p, ok := bt.Kind.(gamedb.PowerConsumer)
		if !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		updated = st
		copies, err = solvePowerConsumerCopies(target, rate, p)
	case accounting.StationSettings:
		return nil, errors.New("stations do not support backdriving")
	case accounting.BalanceAdjustmentSettings:
		if _, ok := bt.Kind.(gamedb.BalanceAdjustment); !ok {
			return nil, kindMismatch(st, bt.Kind)
		}
		copies, updated, err = solveBalanceAdjustment(target, signed, st, b.Copies)
	default:
		return nil, fmt.Errorf("unknown settings type %T", settings)
	}
	if err != nil {
		return nil, err
	}

	b.Copies = copies
	b.Settings = updated
	rebuilt, err := accounting.NewBuildingNode(b, s.db)
	if err != nil {
		return nil, fmt.Errorf("rebuilding after backdrive: %w", err)
	}
	return rebuilt, nil
}

func kindMismatch(settings accounting.Settings, kind gamedb.BuildingKind) error {
	return fmt.Errorf("settings kind %s does not match building kind %s", settings.KindID(), kind.KindID())
}

func (s *Solver) solveManufacturer(target gamedb.ItemOrPower, rate float64, ms accounting.ManufacturerSettings, m gamedb.Manufacturer) (float64, accounting.Settings, error) {
	var res solution
	if target.IsPower() {
		var err error
		res, err = solveConsumedPower(ms.Clock, rate, m.PowerConsumption, s.policy.Manufacturer)
		if err != nil {
			return 0, nil, err
		}
	} else {
		item, _ := target.Item()
		if ms.Recipe == "" {
			return 0, nil, errors.New("no recipe selected")
		}
		recipe, ok := s.db.Recipe(ms.Recipe)
		if !ok {
			return 0, nil, fmt.Errorf("recipe %s is not in the database", ms.Recipe)
		}
		var in, out float64
		for _, ing := range recipe.Ingredients {
			if ing.Item == item {
				in += ing.Amount
			}
		}
		for _, prod := range recipe.Products {
			if prod.Item == item {
				out += prod.Amount
			}
		}
		// Net rate per machine at 100% clock. Input vs output does
		// not matter here, only the magnitude.
		base := math.Abs(in-out) / recipe.Time * 60 * m.ManufacturingSpeed
		var err error
		res, err = solveItemRate(ms.Clock, rate, base, m.Overclockable(), s.policy.Manufacturer)
		if err != nil {
			return 0, nil, err
		}
	}
	ms.Clock = res.clock
	return res.copies, ms, nil
}

func (s *Solver) solveMiner(target gamedb.ItemOrPower, rate float64, ms accounting.MinerSettings, m gamedb.Miner) (float64, accounting.Settings, error) {
	var res solution
	if target.IsPower() {
		var err error
		res, err = solveConsumedPower(ms.Clock, rate, m.PowerConsumption, s.policy.Extractor)
		if err != nil {
			return 0, nil, err
		}
	} else {
		item, _ := target.Item()
		if ms.Resource == "" {
			return 0, nil, errors.New("no resource selected")
		}
		if item != ms.Resource {
			return 0, nil, fmt.Errorf("target %s does not match the selected resource %s", item, ms.Resource)
		}
		base := math.Abs(60 / m.CycleTime * ms.Purity.Multiplier() * m.ItemsPerCycle)
		var err error
		res, err = solveItemRate(ms.Clock, rate, base, m.Overclockable(), s.policy.Extractor)
		if err != nil {
			return 0, nil, err
		}
	}
	ms.Clock = res.clock
	return res.copies, ms, nil
}

func (s *Solver) solveGenerator(target gamedb.ItemOrPower, rate float64, gs accounting.GeneratorSettings, g gamedb.Generator) (float64, accounting.Settings, error) {
	var res solution
	if target.IsPower() {
		var err error
		res, err = solveProducedPower(gs.Clock, rate, g.PowerProduction, s.policy.Generator)
		if err != nil {
			return 0, nil, err
		}
	} else {
		item, _ := target.Item()
		if gs.Fuel == "" {
			return 0, nil, errors.New("no fuel selected")
		}
		fuelItem, ok := s.db.Item(gs.Fuel)
		if !ok {
			return 0, nil, fmt.Errorf("fuel %s is not in the database", gs.Fuel)
		}
		if fuelItem.Fuel == nil {
			return 0, nil, fmt.Errorf("item %s is not a fuel", gs.Fuel)
		}
		fuel := fuelItem.Fuel

		// Generator item rates all derive from power production, so
		// convert the item rate to a power rate and solve for power.
		// That stays correct for versions where production scales
		// non-linearly with clock speed.
		var powerRate float64
		switch {
		case item == gs.Fuel:
			if fuel.Energy == 0 {
				return 0, nil, fmt.Errorf("fuel %s has no energy", gs.Fuel)
			}
			// MJ * items/min / 60 = MW
			powerRate = fuel.Energy * rate / 60
		case byproductAmount(fuel, item) != 0:
			fuelRate := rate / byproductAmount(fuel, item)
			powerRate = fuel.Energy * fuelRate / 60
		case item == gamedb.Water:
			if g.UsedWater == 0 {
				return 0, nil, errors.New("this generator does not consume water")
			}
			powerRate = rate / g.UsedWater
		default:
			return 0, nil, fmt.Errorf("item %s is not the fuel, a byproduct, or water", item)
		}
		var err error
		res, err = solveProducedPower(gs.Clock, powerRate, g.PowerProduction, s.policy.Generator)
		if err != nil {
			return 0, nil, err
		}
	}
	gs.Clock = res.clock
	return res.copies, gs, nil
}

func byproductAmount(fuel *gamedb.Fuel, item gamedb.ItemID) float64 {
	for _, bp := range fuel.Byproducts {
		if bp.Item == item {
			return bp.Amount
		}
	}
	return 0
}

func (s *Solver) solvePump(target gamedb.ItemOrPower, rate float64, ps accounting.PumpSettings, p gamedb.Pump) (float64, accounting.Settings, error) {
	var res solution
	if target.IsPower() {
		var err error
		res, err = solveConsumedPower(ps.Clock, rate, p.PowerConsumption, s.policy.Extractor)
		if err != nil {
			return 0, nil, err
		}
	} else {
		item, _ := target.Item()
		if ps.Resource == "" {
			return 0, nil, errors.New("no resource selected")
		}
		if item != ps.Resource {
			return 0, nil, fmt.Errorf("target %s does not match the selected resource %s", item, ps.Resource)
		}
		pads := float64(ps.PurePads)*accounting.PurityPure.Multiplier() +
			float64(ps.NormalPads)*accounting.PurityNormal.Multiplier() +
			float64(ps.ImpurePads)*accounting.PurityImpure.Multiplier()
		base := math.Abs(60 / p.CycleTime * p.ItemsPerCycle * pads)
		var err error
		res, err = solveItemRate(ps.Clock, rate, base, p.Overclockable(), s.policy.Extractor)
		if err != nil {
			return 0, nil, err
		}
	}
	ps.Clock = res.clock
	return res.copies, ps, nil
}

// solveGeothermal rounds up to whole plants. Geothermal has no clock.
func solveGeothermal(target gamedb.ItemOrPower, rate float64, gs accounting.GeothermalSettings, g gamedb.Geothermal) (float64, error) {
	if g.Power == 0 {
		return 0, errors.New("geothermal produces no power")
	}
	if !target.IsPower() {
		return 0, errors.New("geothermal can only backdrive power")
	}
	return math.Ceil(rate / (g.Power * gs.Purity.Multiplier())), nil
}

func solvePowerConsumerCopies(target gamedb.ItemOrPower, rate float64, p gamedb.PowerConsumer) (float64, error) {
	if !target.IsPower() {
		return 0, errors.New("power consumers can only backdrive power")
	}
	if p.Power == 0 {
		return 0, errors.New("power consumer draws no power")
	}
	return math.Ceil(rate / p.Power), nil
}

// solveBalanceAdjustment keeps the copies and spreads the signed rate
// over them, since adjustment balances scale with copies like any
// other building.
func solveBalanceAdjustment(target gamedb.ItemOrPower, signedRate float64, bas accounting.BalanceAdjustmentSettings, copies float64) (float64, accounting.Settings, error) {
	if bas.Target == "" {
		return 0, nil, errors.New("balance adjustment has no target set")
	}
	if bas.Target != target {
		return 0, nil, fmt.Errorf("target %s does not match the adjustment's target %s", target, bas.Target)
	}
	if copies == 0 {
		return 0, nil, errors.New("balance adjustment has no copies to spread the rate over")
	}
	bas.Rate = signedRate / copies
	return copies, bas, nil
}
