package gamedb

import (
	"encoding/json"
	"fmt"
)

// ItemAmount is a quantity of a single item produced or consumed.
type ItemAmount struct {
	Item ItemID `json:"item"`
	// Amount of the item. Fractional amounts occur only for fluids.
	Amount float64 `json:"amount"`
}

// Recipe describes how a manufacturer turns ingredients into
// products.
type Recipe struct {
	// Name of the recipe, typically similar to the product name.
	Name string   `json:"name"`
	ID   RecipeID `json:"id"`
	// Image is the icon id for this recipe.
	Image string `json:"image"`
	// Time to complete one run at 100% clock speed, in seconds.
	Time        float64      `json:"time"`
	Ingredients []ItemAmount `json:"ingredients"`
	Products    []ItemAmount `json:"products"`
	IsAlternate bool         `json:"is_alternate"`
	// ProducedIn lists the buildings able to run this recipe.
	ProducedIn []BuildingID `json:"produced_in"`
}

// Fuel describes an item's use as generator fuel.
type Fuel struct {
	// Energy one item is worth, in MJ.
	Energy float64 `json:"energy"`
	// Byproducts produced per item of fuel burned.
	Byproducts []ItemAmount `json:"byproducts,omitempty"`
}

// Item is a solid or fluid item used in crafting.
type Item struct {
	Name  string `json:"name"`
	ID    ItemID `json:"id"`
	Image string `json:"image"`
	// Description of the item, as shown in game.
	Description string `json:"description"`
	// Fuel is set when the item can be burned in a generator.
	Fuel *Fuel `json:"fuel,omitempty"`
	// ProducedBy lists recipes that produce this item.
	ProducedBy []RecipeID `json:"produced_by"`
	// ConsumedBy lists recipes that consume this item.
	ConsumedBy []RecipeID `json:"consumed_by"`
	// MinedBy lists buildings able to extract this item.
	MinedBy []BuildingID `json:"mined_by"`
	// MiningSpeed scales extraction of this resource.
	MiningSpeed float64 `json:"mining_speed"`
}

// BuildingType is a building that can appear in a factory.
type BuildingType struct {
	Name  string
	ID    BuildingID
	Image string
	// Description of the building, as shown in game.
	Description string
	// Kind determines how the building produces or consumes items
	// and power.
	Kind BuildingKind
}

// Overclockable reports whether buildings of this type respond to
// clock speed.
func (b *BuildingType) Overclockable() bool {
	if b.Kind == nil {
		return false
	}
	return b.Kind.Overclockable()
}

// buildingTypeJSON is the wire form of BuildingType. The kind is kept
// raw so the envelope codec in kinds.go can handle it.
type buildingTypeJSON struct {
	Name        string          `json:"name"`
	ID          BuildingID      `json:"id"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Kind        json.RawMessage `json:"kind"`
}

// MarshalJSON implements json.Marshaler.
func (b BuildingType) MarshalJSON() ([]byte, error) {
	kind, err := marshalKind(b.Kind)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", b.ID, err)
	}
	return json.Marshal(buildingTypeJSON{
		Name:        b.Name,
		ID:          b.ID,
		Image:       b.Image,
		Description: b.Description,
		Kind:        kind,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BuildingType) UnmarshalJSON(data []byte) error {
	var raw buildingTypeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Kind) == 0 {
		return fmt.Errorf("building %s has no kind", raw.ID)
	}
	kind, err := unmarshalKind(raw.Kind)
	if err != nil {
		return fmt.Errorf("building %s: %w", raw.ID, err)
	}
	*b = BuildingType{
		Name:        raw.Name,
		ID:          raw.ID,
		Image:       raw.Image,
		Description: raw.Description,
		Kind:        kind,
	}
	return nil
}
