package gamedb

import "strings"

// ItemID identifies an item class, e.g. "Desc_IronOre_C".
type ItemID string

// RecipeID identifies a recipe, e.g. "Recipe_IngotIron_C".
type RecipeID string

// BuildingID identifies a building type, e.g. "Build_SmelterMk1_C".
type BuildingID string

// Water is the item consumed as coolant by generators whose fuel
// requires it.
const Water ItemID = "Desc_Water_C"

// ItemOrPower references either a concrete item or power itself, for
// settings that accept both. The empty value means nothing is
// selected.
type ItemOrPower string

// PowerTarget is the ItemOrPower value that selects power. The
// sentinel uses characters that never appear in real item ids.
const PowerTarget ItemOrPower = "_Power_"

// ItemTarget returns the ItemOrPower value selecting the given item.
func ItemTarget(id ItemID) ItemOrPower {
	return ItemOrPower(id)
}

// IsPower reports whether the reference selects power.
func (p ItemOrPower) IsPower() bool {
	return p == PowerTarget
}

// Item returns the referenced item id, if the reference selects an
// item rather than power or nothing.
func (p ItemOrPower) Item() (ItemID, bool) {
	if p == "" || p == PowerTarget {
		return "", false
	}
	return ItemID(p), true
}

// CompareIgnorePrefix compares two ids ignoring everything up to and
// including the first underscore. Game ids carry class prefixes like
// "Desc_" and "Build_" that would otherwise dominate sort order.
func CompareIgnorePrefix(left, right string) int {
	return strings.Compare(skipPrefix(left), skipPrefix(right))
}

func skipPrefix(id string) string {
	if _, rest, ok := strings.Cut(id, "_"); ok {
		return rest
	}
	return id
}
