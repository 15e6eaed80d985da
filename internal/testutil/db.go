package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/gamedb"
)

// Fixture ids used by the database returned from Database.
//
// The numbers are chosen so the expected rates in tests come out as
// small round values.
const (
	IronOre gamedb.ItemID = "Desc_OreIron_C"
	Ingot   gamedb.ItemID = "Desc_IronIngot_C"
	Water   gamedb.ItemID = gamedb.Water
	Oil     gamedb.ItemID = "Desc_LiquidOil_C"
	Coal    gamedb.ItemID = "Desc_Coal_C"
	FuelRod gamedb.ItemID = "Desc_NuclearFuelRod_C"
	Waste   gamedb.ItemID = "Desc_NuclearWaste_C"
	Plastic gamedb.ItemID = "Desc_Plastic_C"

	SmeltIngot  gamedb.RecipeID = "Recipe_IngotIron_C"
	PureIngot   gamedb.RecipeID = "Recipe_Alternate_PureIronIngot_C"
	MakePlastic gamedb.RecipeID = "Recipe_Plastic_C"

	Smelter      gamedb.BuildingID = "Build_SmelterMk1_C"
	FixedSmelter gamedb.BuildingID = "Build_SmelterFixed_C"
	Miner        gamedb.BuildingID = "Build_MinerMk1_C"
	WaterPump    gamedb.BuildingID = "Build_WaterPump_C"
	OilPump      gamedb.BuildingID = "Build_FrackingExtractor_C"
	HeavyPump    gamedb.BuildingID = "Build_FrackingExtractorMk2_C"
	CoalGen      gamedb.BuildingID = "Build_GeneratorCoal_C"
	NuclearGen   gamedb.BuildingID = "Build_GeneratorNuclear_C"
	GeoPlant     gamedb.BuildingID = "Build_GeneratorGeoThermal_C"
	Sink         gamedb.BuildingID = "Build_ResourceSink_C"
	TruckStop    gamedb.BuildingID = "Build_TruckStation_C"
	Adjustment   gamedb.BuildingID = "Build_BalanceAdjustment_C"
)

// Database returns a small game database covering every building
// kind, with deterministic contents shared by tests across packages.
func Database(t *testing.T) *gamedb.Database {
	t.Helper()

	items := []gamedb.Item{
		{
			Name: "Iron Ore", ID: IronOre,
			ConsumedBy: []gamedb.RecipeID{SmeltIngot, PureIngot},
			MinedBy:    []gamedb.BuildingID{Miner},
		},
		{
			Name: "Iron Ingot", ID: Ingot,
			ProducedBy: []gamedb.RecipeID{SmeltIngot, PureIngot},
		},
		{
			Name: "Water", ID: Water,
			ConsumedBy: []gamedb.RecipeID{PureIngot},
			MinedBy:    []gamedb.BuildingID{WaterPump},
		},
		{
			Name: "Crude Oil", ID: Oil,
			ConsumedBy: []gamedb.RecipeID{MakePlastic},
			MinedBy:    []gamedb.BuildingID{OilPump, HeavyPump},
		},
		{
			Name: "Plastic", ID: Plastic,
			ProducedBy: []gamedb.RecipeID{MakePlastic},
		},
		{
			Name: "Coal", ID: Coal,
			Fuel: &gamedb.Fuel{Energy: 300},
		},
		{
			Name: "Uranium Fuel Rod", ID: FuelRod,
			Fuel: &gamedb.Fuel{
				Energy: 1500,
				Byproducts: []gamedb.ItemAmount{
					{Item: Waste, Amount: 10},
				},
			},
		},
		{Name: "Uranium Waste", ID: Waste},
	}

	recipes := []gamedb.Recipe{
		{
			Name: "Iron Ingot", ID: SmeltIngot, Time: 2,
			Ingredients: []gamedb.ItemAmount{{Item: IronOre, Amount: 1}},
			Products:    []gamedb.ItemAmount{{Item: Ingot, Amount: 1}},
			ProducedIn:  []gamedb.BuildingID{Smelter, FixedSmelter},
		},
		{
			Name: "Pure Iron Ingot", ID: PureIngot, Time: 4, IsAlternate: true,
			Ingredients: []gamedb.ItemAmount{
				{Item: IronOre, Amount: 2},
				{Item: Water, Amount: 1},
			},
			Products:   []gamedb.ItemAmount{{Item: Ingot, Amount: 3}},
			ProducedIn: []gamedb.BuildingID{Smelter},
		},
		{
			Name: "Plastic", ID: MakePlastic, Time: 6,
			Ingredients: []gamedb.ItemAmount{{Item: Oil, Amount: 3}},
			Products:    []gamedb.ItemAmount{{Item: Plastic, Amount: 2}},
			ProducedIn:  []gamedb.BuildingID{},
		},
	}

	buildings := []gamedb.BuildingType{
		{
			Name: "Smelter", ID: Smelter,
			Kind: gamedb.Manufacturer{
				ManufacturingSpeed: 1,
				AvailableRecipes:   []gamedb.RecipeID{SmeltIngot, PureIngot},
				PowerConsumption:   gamedb.Power{Power: 4, PowerExponent: 1.6},
			},
		},
		{
			Name: "Fixed Smelter", ID: FixedSmelter,
			Kind: gamedb.Manufacturer{
				ManufacturingSpeed: 1,
				AvailableRecipes:   []gamedb.RecipeID{SmeltIngot},
				PowerConsumption:   gamedb.Power{Power: 10, PowerExponent: 0},
			},
		},
		{
			Name: "Miner Mk.1", ID: Miner,
			Kind: gamedb.Miner{
				AllowedResources: []gamedb.ItemID{IronOre},
				ItemsPerCycle:    1,
				CycleTime:        1,
				PowerConsumption: gamedb.Power{Power: 5, PowerExponent: 1.6},
			},
		},
		{
			Name: "Water Extractor", ID: WaterPump,
			Kind: gamedb.Miner{
				AllowedResources: []gamedb.ItemID{Water},
				ItemsPerCycle:    2,
				CycleTime:        1,
				PowerConsumption: gamedb.Power{Power: 20, PowerExponent: 1},
			},
		},
		{
			Name: "Fracking Extractor", ID: OilPump,
			Kind: gamedb.Pump{
				AllowedResources: []gamedb.ItemID{Oil},
				ItemsPerCycle:    1,
				CycleTime:        2,
				PowerConsumption: gamedb.Power{Power: 40, PowerExponent: 1.6},
			},
		},
		{
			Name: "Heavy Fracking Extractor", ID: HeavyPump,
			Kind: gamedb.Pump{
				AllowedResources: []gamedb.ItemID{Oil},
				ItemsPerCycle:    2,
				CycleTime:        2,
				PowerConsumption: gamedb.Power{Power: 60, PowerExponent: 1},
			},
		},
		{
			Name: "Coal Generator", ID: CoalGen,
			Kind: gamedb.Generator{
				AllowedFuel:     []gamedb.ItemID{Coal},
				UsedWater:       0.6,
				PowerProduction: gamedb.Power{Power: 75, PowerExponent: 1},
			},
		},
		{
			Name: "Nuclear Power Plant", ID: NuclearGen,
			Kind: gamedb.Generator{
				AllowedFuel:     []gamedb.ItemID{FuelRod},
				UsedWater:       0.4,
				PowerProduction: gamedb.Power{Power: 150, PowerExponent: 1},
			},
		},
		{
			Name: "Geothermal Generator", ID: GeoPlant,
			Kind: gamedb.Geothermal{Power: 200},
		},
		{
			Name: "Resource Sink", ID: Sink,
			Kind: gamedb.PowerConsumer{Power: 30},
		},
		{
			Name: "Truck Station", ID: TruckStop,
			Kind: gamedb.Station{
				Power:       20,
				AllowedFuel: []gamedb.ItemID{Coal},
			},
		},
		{
			Name: "Balance Adjustment", ID: Adjustment,
			Kind: gamedb.BalanceAdjustment{},
		},
	}

	db, err := gamedb.New("icons/test/", items, recipes, buildings)
	require.NoError(t, err)
	return db
}
