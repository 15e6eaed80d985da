package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/testutil"
)

// kindOf returns the building kind for a fixture building id.
func kindOf(t *testing.T, db *gamedb.Database, id gamedb.BuildingID) gamedb.BuildingKind {
	t.Helper()
	bt, ok := db.Building(id)
	require.True(t, ok, "fixture building %s", id)
	return bt.Kind
}

func TestDefaultSettings(t *testing.T) {
	db := testutil.Database(t)

	tests := []struct {
		name     string
		building gamedb.BuildingID
		want     Settings
	}{
		{
			name:     "manufacturer with several recipes selects none",
			building: testutil.Smelter,
			want:     ManufacturerSettings{Clock: 1},
		},
		{
			name:     "manufacturer with one recipe selects it",
			building: testutil.FixedSmelter,
			want:     ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1},
		},
		{
			name:     "miner with one resource selects it",
			building: testutil.Miner,
			want:     MinerSettings{Resource: testutil.IronOre, Clock: 1, Purity: PurityNormal},
		},
		{
			name:     "generator with one fuel selects it",
			building: testutil.CoalGen,
			want:     GeneratorSettings{Fuel: testutil.Coal, Clock: 1},
		},
		{
			name:     "pump with one resource selects it",
			building: testutil.OilPump,
			want:     PumpSettings{Resource: testutil.Oil, Clock: 1},
		},
		{
			name:     "geothermal",
			building: testutil.GeoPlant,
			want:     GeothermalSettings{Purity: PurityNormal},
		},
		{
			name:     "power consumer",
			building: testutil.Sink,
			want:     PowerConsumerSettings{},
		},
		{
			name:     "station with one fuel selects it",
			building: testutil.TruckStop,
			want:     StationSettings{Fuel: testutil.Coal},
		},
		{
			name:     "balance adjustment",
			building: testutil.Adjustment,
			want:     BalanceAdjustmentSettings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultSettings(kindOf(t, db, tt.building))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("nil kind", func(t *testing.T) {
		assert.Nil(t, DefaultSettings(nil))
	})
}

func TestMigrateSettings(t *testing.T) {
	db := testutil.Database(t)

	tests := []struct {
		name string
		old  Settings
		to   gamedb.BuildingID
		want Settings
	}{
		{
			name: "manufacturer keeps allowed recipe and clock",
			old:  ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1.5},
			to:   testutil.FixedSmelter,
			want: ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1.5},
		},
		{
			name: "manufacturer swaps to the only allowed recipe",
			old:  ManufacturerSettings{Recipe: testutil.PureIngot, Clock: 1.5},
			to:   testutil.FixedSmelter,
			want: ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1.5},
		},
		{
			name: "miner keeps purity and swaps resource",
			old:  MinerSettings{Resource: testutil.IronOre, Clock: 0.5, Purity: PurityPure},
			to:   testutil.WaterPump,
			want: MinerSettings{Resource: testutil.Water, Clock: 0.5, Purity: PurityPure},
		},
		{
			name: "kind change carries the clock into the defaults",
			old:  ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 2},
			to:   testutil.Miner,
			want: MinerSettings{Resource: testutil.IronOre, Clock: 2, Purity: PurityNormal},
		},
		{
			name: "kind change to a fixed-clock kind drops the clock",
			old:  ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 2},
			to:   testutil.GeoPlant,
			want: GeothermalSettings{Purity: PurityNormal},
		},
		{
			name: "geothermal to geothermal keeps purity",
			old:  GeothermalSettings{Purity: PurityPure},
			to:   testutil.GeoPlant,
			want: GeothermalSettings{Purity: PurityPure},
		},
		{
			name: "station keeps consumption",
			old:  StationSettings{Fuel: testutil.Coal, Consumption: 25},
			to:   testutil.TruckStop,
			want: StationSettings{Fuel: testutil.Coal, Consumption: 25},
		},
		{
			name: "nil settings start from defaults",
			old:  nil,
			to:   testutil.CoalGen,
			want: GeneratorSettings{Fuel: testutil.Coal, Clock: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MigrateSettings(tt.old, kindOf(t, db, tt.to))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithClockSpeed(t *testing.T) {
	original := ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1}
	changed := original.WithClockSpeed(2)

	assert.Equal(t, 2.0, changed.ClockSpeed())
	assert.Equal(t, 1.0, original.Clock, "original settings are unchanged")

	// Kinds without a clock ignore the change and always report 1.0.
	geo := GeothermalSettings{Purity: PurityPure}
	assert.Equal(t, Settings(geo), geo.WithClockSpeed(2))
	assert.Equal(t, 1.0, geo.ClockSpeed())
	assert.Equal(t, 1.0, StationSettings{}.ClockSpeed())
	assert.Equal(t, 1.0, PowerConsumerSettings{}.ClockSpeed())
}

func TestManufacturerBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.Smelter)

	t.Run("no recipe selected", func(t *testing.T) {
		s := ManufacturerSettings{Clock: 1}
		got, err := s.Balance(testutil.Smelter, kind, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero(), "an idle manufacturer draws no power")
	})

	t.Run("basic recipe", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1}
		got, err := s.Balance(testutil.Smelter, kind, db)
		require.NoError(t, err)
		assert.InDelta(t, -4, got.Power(), 1e-9)
		assert.InDelta(t, -30, got.Item(testutil.IronOre), 1e-9)
		assert.InDelta(t, 30, got.Item(testutil.Ingot), 1e-9)
	})

	t.Run("overclocked power uses the exponent", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 2}
		got, err := s.Balance(testutil.Smelter, kind, db)
		require.NoError(t, err)
		// 4 MW * 2^1.6
		assert.InDelta(t, -12.125732532083186, got.Power(), 1e-9)
		assert.InDelta(t, -60, got.Item(testutil.IronOre), 1e-9)
		assert.InDelta(t, 60, got.Item(testutil.Ingot), 1e-9)
	})

	t.Run("multiple ingredients", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: testutil.PureIngot, Clock: 1}
		got, err := s.Balance(testutil.Smelter, kind, db)
		require.NoError(t, err)
		assert.InDelta(t, -30, got.Item(testutil.IronOre), 1e-9)
		assert.InDelta(t, -15, got.Item(testutil.Water), 1e-9)
		assert.InDelta(t, 45, got.Item(testutil.Ingot), 1e-9)
	})

	t.Run("zero exponent pins power at any clock", func(t *testing.T) {
		fixed := kindOf(t, db, testutil.FixedSmelter)
		s := ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 2.5}
		got, err := s.Balance(testutil.FixedSmelter, fixed, db)
		require.NoError(t, err)
		assert.InDelta(t, -10, got.Power(), 1e-9)
		assert.InDelta(t, 75, got.Item(testutil.Ingot), 1e-9)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: "Recipe_Missing_C", Clock: 1}
		_, err := s.Balance(testutil.Smelter, kind, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeUnknownRecipe, be.Code)
		assert.Equal(t, gamedb.RecipeID("Recipe_Missing_C"), be.Recipe)
	})

	t.Run("incompatible recipe", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: testutil.MakePlastic, Clock: 1}
		_, err := s.Balance(testutil.Smelter, kind, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeIncompatibleRecipe, be.Code)
		assert.Equal(t, testutil.MakePlastic, be.Recipe)
		assert.Equal(t, testutil.Smelter, be.Building)
	})

	t.Run("mismatched kind", func(t *testing.T) {
		s := ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1}
		_, err := s.Balance(testutil.Miner, kindOf(t, db, testutil.Miner), db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeMismatchedKind, be.Code)
		assert.Equal(t, gamedb.KindManufacturer, be.SettingsKind)
		assert.Equal(t, gamedb.KindMiner, be.TypeKind)
	})
}

func TestMinerBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.Miner)

	tests := []struct {
		name      string
		purity    Purity
		clock     float64
		wantOre   float64
		wantPower float64
	}{
		{name: "normal", purity: PurityNormal, clock: 1, wantOre: 60, wantPower: -5},
		{name: "pure doubles output", purity: PurityPure, clock: 1, wantOre: 120, wantPower: -5},
		{name: "impure halves output", purity: PurityImpure, clock: 1, wantOre: 30, wantPower: -5},
		{
			name: "underclocked pure", purity: PurityPure, clock: 0.5,
			// 5 MW * 0.5^1.6
			wantOre: 60, wantPower: -1.6493848884661174,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MinerSettings{Resource: testutil.IronOre, Clock: tt.clock, Purity: tt.purity}
			got, err := s.Balance(testutil.Miner, kind, db)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantOre, got.Item(testutil.IronOre), 1e-9)
			assert.InDelta(t, tt.wantPower, got.Power(), 1e-9)
		})
	}

	t.Run("no resource selected", func(t *testing.T) {
		s := MinerSettings{Clock: 1, Purity: PurityNormal}
		got, err := s.Balance(testutil.Miner, kind, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("incompatible resource", func(t *testing.T) {
		s := MinerSettings{Resource: testutil.Water, Clock: 1}
		_, err := s.Balance(testutil.Miner, kind, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeIncompatibleItem, be.Code)
		assert.Equal(t, testutil.Water, be.Item)
		assert.Equal(t, testutil.Miner, be.Building)
	})
}

func TestGeneratorBalance(t *testing.T) {
	db := testutil.Database(t)
	coal := kindOf(t, db, testutil.CoalGen)

	t.Run("coal generator", func(t *testing.T) {
		s := GeneratorSettings{Fuel: testutil.Coal, Clock: 1}
		got, err := s.Balance(testutil.CoalGen, coal, db)
		require.NoError(t, err)
		assert.InDelta(t, 75, got.Power(), 1e-9)
		// Water per minute is power * used_water.
		assert.InDelta(t, -45, got.Item(testutil.Water), 1e-9)
		// 300 MJ at 75 MW burns for 4 seconds.
		assert.InDelta(t, -15, got.Item(testutil.Coal), 1e-9)
	})

	t.Run("underclocked", func(t *testing.T) {
		s := GeneratorSettings{Fuel: testutil.Coal, Clock: 0.5}
		got, err := s.Balance(testutil.CoalGen, coal, db)
		require.NoError(t, err)
		assert.InDelta(t, 37.5, got.Power(), 1e-9)
		assert.InDelta(t, -22.5, got.Item(testutil.Water), 1e-9)
		assert.InDelta(t, -7.5, got.Item(testutil.Coal), 1e-9)
	})

	t.Run("byproducts scale with fuel burned", func(t *testing.T) {
		nuclear := kindOf(t, db, testutil.NuclearGen)
		s := GeneratorSettings{Fuel: testutil.FuelRod, Clock: 1}
		got, err := s.Balance(testutil.NuclearGen, nuclear, db)
		require.NoError(t, err)
		assert.InDelta(t, 150, got.Power(), 1e-9)
		assert.InDelta(t, -60, got.Item(testutil.Water), 1e-9)
		// 1500 MJ at 150 MW burns for 10 seconds.
		assert.InDelta(t, -6, got.Item(testutil.FuelRod), 1e-9)
		assert.InDelta(t, 60, got.Item(testutil.Waste), 1e-9)
	})

	t.Run("no fuel selected", func(t *testing.T) {
		s := GeneratorSettings{Clock: 1}
		got, err := s.Balance(testutil.CoalGen, coal, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("item without fuel data", func(t *testing.T) {
		// The fuel check comes before the compatibility check.
		s := GeneratorSettings{Fuel: testutil.IronOre, Clock: 1}
		_, err := s.Balance(testutil.CoalGen, coal, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeNotFuel, be.Code)
	})

	t.Run("incompatible fuel", func(t *testing.T) {
		s := GeneratorSettings{Fuel: testutil.FuelRod, Clock: 1}
		_, err := s.Balance(testutil.CoalGen, coal, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeIncompatibleItem, be.Code)
	})
}

func TestPumpBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.OilPump)

	t.Run("pad purities weight the rate", func(t *testing.T) {
		s := PumpSettings{
			Resource: testutil.Oil, Clock: 1,
			PurePads: 1, NormalPads: 1, ImpurePads: 2,
		}
		got, err := s.Balance(testutil.OilPump, kind, db)
		require.NoError(t, err)
		// 30 base cycles * 1 item * (1*2 + 1*1 + 2*0.5)
		assert.InDelta(t, 120, got.Item(testutil.Oil), 1e-9)
		assert.InDelta(t, -40, got.Power(), 1e-9)
	})

	t.Run("no pads still draws power", func(t *testing.T) {
		s := PumpSettings{Resource: testutil.Oil, Clock: 1}
		got, err := s.Balance(testutil.OilPump, kind, db)
		require.NoError(t, err)
		assert.InDelta(t, -40, got.Power(), 1e-9)
		assert.True(t, got.HasItem(testutil.Oil))
		assert.Equal(t, 0.0, got.Item(testutil.Oil))
	})

	t.Run("no resource selected", func(t *testing.T) {
		s := PumpSettings{Clock: 1, PurePads: 3}
		got, err := s.Balance(testutil.OilPump, kind, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestGeothermalBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.GeoPlant)

	tests := []struct {
		purity Purity
		want   float64
	}{
		{purity: PurityImpure, want: 100},
		{purity: PurityNormal, want: 200},
		{purity: PurityPure, want: 400},
	}
	for _, tt := range tests {
		t.Run(string(tt.purity), func(t *testing.T) {
			s := GeothermalSettings{Purity: tt.purity}
			got, err := s.Balance(testutil.GeoPlant, kind, db)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Power(), 1e-9)
			assert.Empty(t, got.Items())
		})
	}
}

func TestPowerConsumerBalance(t *testing.T) {
	db := testutil.Database(t)

	s := PowerConsumerSettings{}
	got, err := s.Balance(testutil.Sink, kindOf(t, db, testutil.Sink), db)
	require.NoError(t, err)
	assert.InDelta(t, -30, got.Power(), 1e-9)
	assert.Empty(t, got.Items())
}

func TestStationBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.TruckStop)

	t.Run("fuel selected", func(t *testing.T) {
		s := StationSettings{Fuel: testutil.Coal, Consumption: 25}
		got, err := s.Balance(testutil.TruckStop, kind, db)
		require.NoError(t, err)
		assert.InDelta(t, -20, got.Power(), 1e-9)
		assert.InDelta(t, -25, got.Item(testutil.Coal), 1e-9)
	})

	t.Run("no fuel draws no power", func(t *testing.T) {
		s := StationSettings{Consumption: 25}
		got, err := s.Balance(testutil.TruckStop, kind, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("incompatible fuel needs no fuel data", func(t *testing.T) {
		// Stations deduct at a configured rate, so any existing item
		// is a candidate and only the allowed list rejects it.
		s := StationSettings{Fuel: testutil.Ingot, Consumption: 5}
		_, err := s.Balance(testutil.TruckStop, kind, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeIncompatibleItem, be.Code)
	})
}

func TestBalanceAdjustmentBalance(t *testing.T) {
	db := testutil.Database(t)
	kind := kindOf(t, db, testutil.Adjustment)

	t.Run("power target", func(t *testing.T) {
		s := BalanceAdjustmentSettings{Target: gamedb.PowerTarget, Rate: -50}
		got, err := s.Balance(testutil.Adjustment, kind, db)
		require.NoError(t, err)
		assert.InDelta(t, -50, got.Power(), 1e-9)
		assert.Empty(t, got.Items())
	})

	t.Run("item target", func(t *testing.T) {
		s := BalanceAdjustmentSettings{Target: gamedb.ItemTarget(testutil.Water), Rate: 120}
		got, err := s.Balance(testutil.Adjustment, kind, db)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Power())
		assert.InDelta(t, 120, got.Item(testutil.Water), 1e-9)
	})

	t.Run("no target", func(t *testing.T) {
		s := BalanceAdjustmentSettings{Rate: 120}
		got, err := s.Balance(testutil.Adjustment, kind, db)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("unknown item", func(t *testing.T) {
		s := BalanceAdjustmentSettings{Target: gamedb.ItemTarget("Desc_Missing_C"), Rate: 1}
		_, err := s.Balance(testutil.Adjustment, kind, db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeUnknownItem, be.Code)
	})

	t.Run("mismatched kind", func(t *testing.T) {
		s := BalanceAdjustmentSettings{Target: gamedb.PowerTarget, Rate: 1}
		_, err := s.Balance(testutil.Sink, kindOf(t, db, testutil.Sink), db)
		be, ok := AsBuildError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodeMismatchedKind, be.Code)
	})
}

func TestSettingsJSON(t *testing.T) {
	t.Run("flat envelope", func(t *testing.T) {
		data, err := marshalSettings(ManufacturerSettings{Recipe: testutil.SmeltIngot, Clock: 1.5})
		require.NoError(t, err)
		assert.JSONEq(t, `{"kind":"Manufacturer","recipe":"Recipe_IngotIron_C","clock_speed":1.5}`, string(data))
	})

	t.Run("marshal normalizes purity", func(t *testing.T) {
		data, err := marshalSettings(MinerSettings{Resource: testutil.IronOre, Clock: 1})
		require.NoError(t, err)
		assert.JSONEq(t, `{"kind":"Miner","resource":"Desc_OreIron_C","clock_speed":1,"purity":"normal"}`, string(data))
	})

	t.Run("power target round-trips", func(t *testing.T) {
		data, err := marshalSettings(BalanceAdjustmentSettings{Target: gamedb.PowerTarget, Rate: -50})
		require.NoError(t, err)
		assert.JSONEq(t, `{"kind":"BalanceAdjustment","item_or_power":"_Power_","rate":-50}`, string(data))

		got, err := unmarshalSettings(data)
		require.NoError(t, err)
		assert.Equal(t, BalanceAdjustmentSettings{Target: gamedb.PowerTarget, Rate: -50}, got)
	})

	t.Run("missing clock defaults to one", func(t *testing.T) {
		got, err := unmarshalSettings([]byte(`{"kind":"Miner","resource":"Desc_OreIron_C"}`))
		require.NoError(t, err)
		assert.Equal(t, MinerSettings{Resource: testutil.IronOre, Clock: 1, Purity: PurityNormal}, got)
	})

	t.Run("decode applies clock from input", func(t *testing.T) {
		got, err := unmarshalSettings([]byte(`{"kind":"Generator","fuel":"Desc_Coal_C","clock_speed":0.5}`))
		require.NoError(t, err)
		assert.Equal(t, GeneratorSettings{Fuel: testutil.Coal, Clock: 0.5}, got)
	})

	t.Run("unit settings decode from bare envelope", func(t *testing.T) {
		got, err := unmarshalSettings([]byte(`{"kind":"PowerConsumer"}`))
		require.NoError(t, err)
		assert.Equal(t, PowerConsumerSettings{}, got)
	})

	t.Run("invalid purity", func(t *testing.T) {
		_, err := unmarshalSettings([]byte(`{"kind":"Geothermal","purity":"legendary"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "legendary")
	})

	t.Run("missing kind", func(t *testing.T) {
		_, err := unmarshalSettings([]byte(`{"clock_speed":1}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := unmarshalSettings([]byte(`{"kind":"Teleporter"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Teleporter")
	})

	t.Run("nil settings cannot marshal", func(t *testing.T) {
		_, err := marshalSettings(nil)
		require.Error(t, err)
	})
}
