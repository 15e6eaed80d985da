package gamedb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalKind_Discriminator(t *testing.T) {
	data := []byte(`{
		"kind": "Miner",
		"allowed_resources": ["Desc_OreIron_C"],
		"items_per_cycle": 1,
		"cycle_time": 1,
		"power_consumption": {"power": 5, "power_exponent": 1.6}
	}`)

	kind, err := unmarshalKind(data)
	require.NoError(t, err)

	miner, ok := kind.(Miner)
	require.True(t, ok, "expected a Miner, got %T", kind)
	assert.Equal(t, []ItemID{"Desc_OreIron_C"}, miner.AllowedResources)
	assert.Equal(t, KindMiner, miner.KindID())
	assert.True(t, miner.Overclockable())
}

func TestUnmarshalKind_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"missing kind", `{"power": 30}`, "missing"},
		{"unknown kind", `{"kind": "Teleporter"}`, "unknown building kind"},
		{"not an object", `[1, 2]`, "probing building kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unmarshalKind([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarshalKind_EnvelopeIsFlat(t *testing.T) {
	data, err := marshalKind(Geothermal{Power: 200})
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "Geothermal", flat["kind"])
	assert.Equal(t, 200.0, flat["power"])
}

func TestBuildingType_JSONRoundTrip(t *testing.T) {
	building := BuildingType{
		Name:        "Coal-Powered Generator",
		ID:          "Build_GeneratorCoal_C",
		Image:       "coal-generator",
		Description: "Burns coal.",
		Kind: Generator{
			AllowedFuel:     []ItemID{"Desc_Coal_C"},
			UsedWater:       0.6,
			PowerProduction: Power{Power: 75, PowerExponent: 1},
		},
	}

	data, err := json.Marshal(building)
	require.NoError(t, err)

	var decoded BuildingType
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, building, decoded)
}

func TestBuildingType_UnmarshalRejectsMissingKind(t *testing.T) {
	var decoded BuildingType
	err := json.Unmarshal([]byte(`{"name": "X", "id": "Build_X_C"}`), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no kind")
}
