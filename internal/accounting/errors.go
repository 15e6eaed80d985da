package accounting

import (
	"errors"
	"fmt"

	"github.com/roach88/tally/internal/gamedb"
)

// BuildError represents a failure to compute a building's balance
// against a database.
//
// Build errors include:
//   - Unknown ids: the building, recipe, or item is not in the database
//   - Incompatible selections: the recipe or item exists but this
//     building type does not allow it
//   - Kind mismatch: the settings shape does not match the building kind
//
// BuildError includes structured fields for diagnostics, so callers
// can degrade the node to a warning or reject an edit with context.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Building is the building type involved, when known.
	Building gamedb.BuildingID `json:"building,omitempty"`

	// Recipe is the recipe involved, for recipe errors.
	Recipe gamedb.RecipeID `json:"recipe,omitempty"`

	// Item is the item involved, for item and fuel errors.
	Item gamedb.ItemID `json:"item,omitempty"`

	// SettingsKind and TypeKind identify the two sides of a
	// MISMATCHED_KIND error.
	SettingsKind gamedb.KindID `json:"settings_kind,omitempty"`
	TypeKind     gamedb.KindID `json:"type_kind,omitempty"`
}

// BuildErrorCode categorizes build errors.
type BuildErrorCode string

const (
	// ErrCodeUnknownBuilding indicates the building id is not in the database.
	ErrCodeUnknownBuilding BuildErrorCode = "UNKNOWN_BUILDING"

	// ErrCodeUnknownRecipe indicates the recipe id is not in the database.
	ErrCodeUnknownRecipe BuildErrorCode = "UNKNOWN_RECIPE"

	// ErrCodeUnknownItem indicates the item id is not in the database.
	ErrCodeUnknownItem BuildErrorCode = "UNKNOWN_ITEM"

	// ErrCodeNotFuel indicates the selected item cannot be burned.
	ErrCodeNotFuel BuildErrorCode = "NOT_FUEL"

	// ErrCodeIncompatibleRecipe indicates the building cannot run the recipe.
	ErrCodeIncompatibleRecipe BuildErrorCode = "INCOMPATIBLE_RECIPE"

	// ErrCodeIncompatibleItem indicates the building cannot use the item.
	ErrCodeIncompatibleItem BuildErrorCode = "INCOMPATIBLE_ITEM"

	// ErrCodeMismatchedKind indicates settings and building type disagree.
	ErrCodeMismatchedKind BuildErrorCode = "MISMATCHED_KIND"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsBuildError extracts a BuildError from err, if any. Uses errors.As
// to handle wrapped errors.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// NewUnknownBuilding creates a BuildError for a building id missing
// from the database.
func NewUnknownBuilding(id gamedb.BuildingID) *BuildError {
	return &BuildError{
		Code:     ErrCodeUnknownBuilding,
		Message:  fmt.Sprintf("building %s is not in the database", id),
		Building: id,
	}
}

// NewUnknownRecipe creates a BuildError for a recipe id missing from
// the database.
func NewUnknownRecipe(id gamedb.RecipeID) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnknownRecipe,
		Message: fmt.Sprintf("recipe %s is not in the database", id),
		Recipe:  id,
	}
}

// NewUnknownItem creates a BuildError for an item id missing from the
// database.
func NewUnknownItem(id gamedb.ItemID) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnknownItem,
		Message: fmt.Sprintf("item %s is not in the database", id),
		Item:    id,
	}
}

// NewNotFuel creates a BuildError for an item without fuel data.
func NewNotFuel(id gamedb.ItemID) *BuildError {
	return &BuildError{
		Code:    ErrCodeNotFuel,
		Message: fmt.Sprintf("item %s is not a fuel", id),
		Item:    id,
	}
}

// NewIncompatibleRecipe creates a BuildError for a recipe the
// building cannot run.
func NewIncompatibleRecipe(recipe gamedb.RecipeID, building gamedb.BuildingID) *BuildError {
	return &BuildError{
		Code:     ErrCodeIncompatibleRecipe,
		Message:  fmt.Sprintf("recipe %s is not compatible with building %s", recipe, building),
		Recipe:   recipe,
		Building: building,
	}
}

// NewIncompatibleItem creates a BuildError for an item the building
// cannot use.
func NewIncompatibleItem(item gamedb.ItemID, building gamedb.BuildingID) *BuildError {
	return &BuildError{
		Code:     ErrCodeIncompatibleItem,
		Message:  fmt.Sprintf("item %s is not compatible with building %s", item, building),
		Item:     item,
		Building: building,
	}
}

// NewMismatchedKind creates a BuildError for settings whose kind does
// not match the building type.
func NewMismatchedKind(settingsKind, typeKind gamedb.KindID) *BuildError {
	return &BuildError{
		Code:         ErrCodeMismatchedKind,
		Message:      fmt.Sprintf("settings kind %s does not match building kind %s", settingsKind, typeKind),
		SettingsKind: settingsKind,
		TypeKind:     typeKind,
	}
}
