package gamedb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Database is an immutable set of items, recipes, and building types.
// Construct one with New or by decoding JSON; do not mutate values
// returned from lookups.
type Database struct {
	iconPrefix string
	recipes    map[RecipeID]*Recipe
	items      map[ItemID]*Item
	buildings  map[BuildingID]*BuildingType
}

// New builds a database from component slices. It rejects entries
// with empty or duplicate ids.
func New(iconPrefix string, items []Item, recipes []Recipe, buildings []BuildingType) (*Database, error) {
	db := &Database{
		iconPrefix: iconPrefix,
		recipes:    make(map[RecipeID]*Recipe, len(recipes)),
		items:      make(map[ItemID]*Item, len(items)),
		buildings:  make(map[BuildingID]*BuildingType, len(buildings)),
	}
	for i := range items {
		item := items[i]
		if item.ID == "" {
			return nil, fmt.Errorf("item %d has no id", i)
		}
		if _, ok := db.items[item.ID]; ok {
			return nil, fmt.Errorf("duplicate item id %s", item.ID)
		}
		db.items[item.ID] = &item
	}
	for i := range recipes {
		recipe := recipes[i]
		if recipe.ID == "" {
			return nil, fmt.Errorf("recipe %d has no id", i)
		}
		if _, ok := db.recipes[recipe.ID]; ok {
			return nil, fmt.Errorf("duplicate recipe id %s", recipe.ID)
		}
		db.recipes[recipe.ID] = &recipe
	}
	for i := range buildings {
		building := buildings[i]
		if building.ID == "" {
			return nil, fmt.Errorf("building %d has no id", i)
		}
		if _, ok := db.buildings[building.ID]; ok {
			return nil, fmt.Errorf("duplicate building id %s", building.ID)
		}
		db.buildings[building.ID] = &building
	}
	return db, nil
}

// IconPrefix is the path prefix for icon assets in this database
// version.
func (d *Database) IconPrefix() string {
	return d.iconPrefix
}

// Item looks up an item by id.
func (d *Database) Item(id ItemID) (*Item, bool) {
	item, ok := d.items[id]
	return item, ok
}

// Recipe looks up a recipe by id.
func (d *Database) Recipe(id RecipeID) (*Recipe, bool) {
	recipe, ok := d.recipes[id]
	return recipe, ok
}

// Building looks up a building type by id.
func (d *Database) Building(id BuildingID) (*BuildingType, bool) {
	building, ok := d.buildings[id]
	return building, ok
}

// Items returns all items sorted by id.
func (d *Database) Items() []*Item {
	out := make([]*Item, 0, len(d.items))
	for _, item := range d.items {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b *Item) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// Recipes returns all recipes sorted by id.
func (d *Database) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(d.recipes))
	for _, recipe := range d.recipes {
		out = append(out, recipe)
	}
	slices.SortFunc(out, func(a, b *Recipe) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// Buildings returns all building types sorted by id.
func (d *Database) Buildings() []*BuildingType {
	out := make([]*BuildingType, 0, len(d.buildings))
	for _, building := range d.buildings {
		out = append(out, building)
	}
	slices.SortFunc(out, func(a, b *BuildingType) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// NumItems returns the number of items.
func (d *Database) NumItems() int { return len(d.items) }

// NumRecipes returns the number of recipes.
func (d *Database) NumRecipes() int { return len(d.recipes) }

// NumBuildings returns the number of building types.
func (d *Database) NumBuildings() int { return len(d.buildings) }

// EquivalentTo reports whether two databases contain the same items,
// recipes, and buildings, ignoring their icon prefixes.
func (d *Database) EquivalentTo(other *Database) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	a, err := json.Marshal(databaseJSON{Recipes: d.recipes, Items: d.items, Buildings: d.buildings})
	if err != nil {
		return false
	}
	b, err := json.Marshal(databaseJSON{Recipes: other.recipes, Items: other.items, Buildings: other.buildings})
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// databaseJSON is the wire form of Database. Components are keyed by
// id, matching the embedded dataset layout.
type databaseJSON struct {
	IconPrefix string                       `json:"icon_prefix"`
	Recipes    map[RecipeID]*Recipe         `json:"recipes"`
	Items      map[ItemID]*Item             `json:"items"`
	Buildings  map[BuildingID]*BuildingType `json:"buildings"`
}

// MarshalJSON implements json.Marshaler.
func (d *Database) MarshalJSON() ([]byte, error) {
	return json.Marshal(databaseJSON{
		IconPrefix: d.iconPrefix,
		Recipes:    d.recipes,
		Items:      d.items,
		Buildings:  d.buildings,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Entries whose id field
// is empty adopt their map key; entries whose id disagrees with the
// key are rejected.
func (d *Database) UnmarshalJSON(data []byte) error {
	var raw databaseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Recipes == nil {
		raw.Recipes = make(map[RecipeID]*Recipe)
	}
	if raw.Items == nil {
		raw.Items = make(map[ItemID]*Item)
	}
	if raw.Buildings == nil {
		raw.Buildings = make(map[BuildingID]*BuildingType)
	}
	for id, recipe := range raw.Recipes {
		switch recipe.ID {
		case "":
			recipe.ID = id
		case id:
		default:
			return fmt.Errorf("recipe keyed %s has id %s", id, recipe.ID)
		}
	}
	for id, item := range raw.Items {
		switch item.ID {
		case "":
			item.ID = id
		case id:
		default:
			return fmt.Errorf("item keyed %s has id %s", id, item.ID)
		}
	}
	for id, building := range raw.Buildings {
		switch building.ID {
		case "":
			building.ID = id
		case id:
		default:
			return fmt.Errorf("building keyed %s has id %s", id, building.ID)
		}
	}
	*d = Database{
		iconPrefix: raw.IconPrefix,
		recipes:    raw.Recipes,
		items:      raw.Items,
		buildings:  raw.Buildings,
	}
	return nil
}
