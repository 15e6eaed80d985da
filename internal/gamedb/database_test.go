package gamedb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []Item {
	return []Item{
		{Name: "Iron Ore", ID: "Desc_OreIron_C", MiningSpeed: 1},
		{Name: "Coal", ID: "Desc_Coal_C", Fuel: &Fuel{Energy: 300}, MiningSpeed: 1},
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	items := append(testItems(), Item{Name: "Iron Ore Again", ID: "Desc_OreIron_C"})
	_, err := New("", items, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item id Desc_OreIron_C")
}

func TestNew_RejectsEmptyID(t *testing.T) {
	_, err := New("", nil, []Recipe{{Name: "Nameless"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestDatabase_Lookups(t *testing.T) {
	db, err := New("icons/", testItems(), nil, nil)
	require.NoError(t, err)

	item, ok := db.Item("Desc_Coal_C")
	require.True(t, ok)
	assert.Equal(t, "Coal", item.Name)
	require.NotNil(t, item.Fuel)
	assert.Equal(t, 300.0, item.Fuel.Energy)

	_, ok = db.Item("Desc_Missing_C")
	assert.False(t, ok)

	assert.Equal(t, "icons/", db.IconPrefix())
	assert.Equal(t, 2, db.NumItems())
	assert.Zero(t, db.NumRecipes())
}

func TestDatabase_ItemsSortedByID(t *testing.T) {
	db, err := New("", testItems(), nil, nil)
	require.NoError(t, err)

	var ids []ItemID
	for _, item := range db.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []ItemID{"Desc_Coal_C", "Desc_OreIron_C"}, ids)
}

func TestDatabase_UnmarshalAdoptsMapKeys(t *testing.T) {
	raw := []byte(`{
		"icon_prefix": "",
		"recipes": {},
		"items": {
			"Desc_OreIron_C": {
				"name": "Iron Ore",
				"produced_by": [], "consumed_by": [], "mined_by": [],
				"mining_speed": 1
			}
		},
		"buildings": {}
	}`)

	var db Database
	require.NoError(t, json.Unmarshal(raw, &db))

	item, ok := db.Item("Desc_OreIron_C")
	require.True(t, ok)
	assert.Equal(t, ItemID("Desc_OreIron_C"), item.ID)
}

func TestDatabase_UnmarshalRejectsKeyMismatch(t *testing.T) {
	raw := []byte(`{
		"items": {
			"Desc_OreIron_C": {
				"name": "Iron Ore", "id": "Desc_Coal_C",
				"produced_by": [], "consumed_by": [], "mined_by": [],
				"mining_speed": 1
			}
		}
	}`)

	var db Database
	err := json.Unmarshal(raw, &db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyed Desc_OreIron_C has id Desc_Coal_C")
}

func TestDatabase_EquivalentTo_IgnoresIconPrefix(t *testing.T) {
	a, err := New("icons/a/", testItems(), nil, nil)
	require.NoError(t, err)
	b, err := New("icons/b/", testItems(), nil, nil)
	require.NoError(t, err)
	c, err := New("icons/a/", testItems()[:1], nil, nil)
	require.NoError(t, err)

	assert.True(t, a.EquivalentTo(b))
	assert.True(t, a.EquivalentTo(a))
	assert.False(t, a.EquivalentTo(c))
}

func TestDatabase_JSONRoundTrip(t *testing.T) {
	db, err := New("icons/", testItems(), []Recipe{{
		Name:        "Iron Ingot",
		ID:          "Recipe_IngotIron_C",
		Time:        2,
		Ingredients: []ItemAmount{{Item: "Desc_OreIron_C", Amount: 1}},
		Products:    []ItemAmount{{Item: "Desc_IronIngot_C", Amount: 1}},
		ProducedIn:  []BuildingID{"Build_SmelterMk1_C"},
	}}, []BuildingType{{
		Name: "Smelter",
		ID:   "Build_SmelterMk1_C",
		Kind: Manufacturer{
			ManufacturingSpeed: 1,
			AvailableRecipes:   []RecipeID{"Recipe_IngotIron_C"},
			PowerConsumption:   Power{Power: 4, PowerExponent: 1.6},
		},
	}})
	require.NoError(t, err)

	data, err := json.Marshal(db)
	require.NoError(t, err)

	decoded := new(Database)
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.True(t, db.EquivalentTo(decoded))
	assert.Equal(t, db.IconPrefix(), decoded.IconPrefix())

	building, ok := decoded.Building("Build_SmelterMk1_C")
	require.True(t, ok)
	assert.IsType(t, Manufacturer{}, building.Kind)
}
