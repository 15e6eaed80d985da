package gamedb

import (
	"encoding/json"
	"fmt"
)

// KindID names a building kind. It identifies both a BuildingKind and
// the settings shape that pairs with it.
type KindID string

// Building kind identifiers.
const (
	KindManufacturer      KindID = "Manufacturer"
	KindMiner             KindID = "Miner"
	KindGenerator         KindID = "Generator"
	KindPump              KindID = "Pump"
	KindGeothermal        KindID = "Geothermal"
	KindPowerConsumer     KindID = "PowerConsumer"
	KindStation           KindID = "Station"
	KindBalanceAdjustment KindID = "BalanceAdjustment"
)

// BuildingKind is a sealed interface describing how a building type
// produces or consumes items and power. Only the kind structs in this
// package implement it.
type BuildingKind interface {
	// KindID returns the identifier shared by this kind and its
	// matching settings.
	KindID() KindID
	// Overclockable reports whether clock speed affects buildings of
	// this kind.
	Overclockable() bool

	buildingKind() // Sealed.
}

// Manufacturer consumes power to produce outputs according to a
// selected recipe.
type Manufacturer struct {
	// ManufacturingSpeed multiplies the base recipe speed.
	ManufacturingSpeed float64 `json:"manufacturing_speed"`
	// AvailableRecipes lists the recipes this building can run.
	AvailableRecipes []RecipeID `json:"available_recipes"`
	PowerConsumption Power      `json:"power_consumption"`
}

func (Manufacturer) KindID() KindID { return KindManufacturer }

func (m Manufacturer) Overclockable() bool { return m.PowerConsumption.Overclockable() }

func (Manufacturer) buildingKind() {}

// Miner consumes power to extract a resource from a resource pad.
type Miner struct {
	// AllowedResources lists the items this miner can extract.
	AllowedResources []ItemID `json:"allowed_resources"`
	// ItemsPerCycle is the number of items extracted per cycle.
	ItemsPerCycle float64 `json:"items_per_cycle"`
	// CycleTime is the duration of one extraction cycle in seconds.
	CycleTime        float64 `json:"cycle_time"`
	PowerConsumption Power   `json:"power_consumption"`
}

func (Miner) KindID() KindID { return KindMiner }

func (m Miner) Overclockable() bool { return m.PowerConsumption.Overclockable() }

func (Miner) buildingKind() {}

// Generator produces power by consuming fuel items.
type Generator struct {
	// AllowedFuel lists the items this generator can burn.
	AllowedFuel []ItemID `json:"allowed_fuel"`
	// UsedWater is the water consumed per MW of production. Zero
	// means the generator needs no water.
	UsedWater       float64 `json:"used_water"`
	PowerProduction Power   `json:"power_production"`
}

func (Generator) KindID() KindID { return KindGenerator }

func (g Generator) Overclockable() bool { return g.PowerProduction.Overclockable() }

func (Generator) buildingKind() {}

// Pump extracts a resource from the pads of a resource well. Pumps
// are like miners, but their extraction rate scales with the number
// and purity of connected pads.
type Pump struct {
	// AllowedResources lists the items this pump can extract.
	AllowedResources []ItemID `json:"allowed_resources"`
	// ItemsPerCycle is the number of items extracted per pad, per
	// cycle.
	ItemsPerCycle float64 `json:"items_per_cycle"`
	// CycleTime is the duration of one extraction cycle in seconds.
	CycleTime        float64 `json:"cycle_time"`
	PowerConsumption Power   `json:"power_consumption"`
}

func (Pump) KindID() KindID { return KindPump }

func (p Pump) Overclockable() bool { return p.PowerConsumption.Overclockable() }

func (Pump) buildingKind() {}

// Geothermal produces power from a resource pad. It cannot be
// overclocked, so there is no exponent.
type Geothermal struct {
	// Power produced on a normal-purity pad, in MW.
	Power float64 `json:"power"`
}

func (Geothermal) KindID() KindID { return KindGeothermal }

func (Geothermal) Overclockable() bool { return false }

func (Geothermal) buildingKind() {}

// PowerConsumer draws power without producing or consuming items.
type PowerConsumer struct {
	// Power drawn, in MW.
	Power float64 `json:"power"`
}

func (PowerConsumer) KindID() KindID { return KindPowerConsumer }

func (PowerConsumer) Overclockable() bool { return false }

func (PowerConsumer) buildingKind() {}

// Station refuels vehicles that stop at it.
type Station struct {
	// Power drawn, in MW.
	Power float64 `json:"power"`
	// AllowedFuel lists the fuels vehicles may take on here.
	AllowedFuel []ItemID `json:"allowed_fuel"`
}

func (Station) KindID() KindID { return KindStation }

func (Station) Overclockable() bool { return false }

func (Station) buildingKind() {}

// BalanceAdjustment is a virtual building that applies an arbitrary
// correction to an item or power balance.
type BalanceAdjustment struct{}

func (BalanceAdjustment) KindID() KindID { return KindBalanceAdjustment }

func (BalanceAdjustment) Overclockable() bool { return false }

func (BalanceAdjustment) buildingKind() {}

// marshalKind encodes a building kind as a flat JSON object with a
// "kind" discriminator alongside the concrete fields.
func marshalKind(k BuildingKind) ([]byte, error) {
	switch k := k.(type) {
	case Manufacturer:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Manufacturer
		}{KindManufacturer, k})
	case Miner:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Miner
		}{KindMiner, k})
	case Generator:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Generator
		}{KindGenerator, k})
	case Pump:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Pump
		}{KindPump, k})
	case Geothermal:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Geothermal
		}{KindGeothermal, k})
	case PowerConsumer:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			PowerConsumer
		}{KindPowerConsumer, k})
	case Station:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			Station
		}{KindStation, k})
	case BalanceAdjustment:
		return json.Marshal(struct {
			Kind KindID `json:"kind"`
			BalanceAdjustment
		}{KindBalanceAdjustment, k})
	case nil:
		return nil, fmt.Errorf("building kind is nil")
	default:
		return nil, fmt.Errorf("unknown building kind %T", k)
	}
}

// unmarshalKind decodes a building kind from its flat JSON envelope.
func unmarshalKind(data []byte) (BuildingKind, error) {
	var probe struct {
		Kind KindID `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("probing building kind: %w", err)
	}
	switch probe.Kind {
	case KindManufacturer:
		var k Manufacturer
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindMiner:
		var k Miner
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindGenerator:
		var k Generator
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindPump:
		var k Pump
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindGeothermal:
		var k Geothermal
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindPowerConsumer:
		var k PowerConsumer
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindStation:
		var k Station
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case KindBalanceAdjustment:
		var k BalanceAdjustment
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("decoding %s kind: %w", probe.Kind, err)
		}
		return k, nil
	case "":
		return nil, fmt.Errorf("building kind envelope is missing the %q field", "kind")
	default:
		return nil, fmt.Errorf("unknown building kind %q", probe.Kind)
	}
}
