package gamedb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// Database validation error codes (D100-D199)
const (
	// Parse and schema errors (D100-D109)
	ErrDatabaseParse  = "D100" // file is not valid JSON for a database
	ErrDatabaseSchema = "D101" // value violates the database schema

	// Reference errors (D110-D119)
	ErrUnknownReference = "D110" // id referenced but not defined
	ErrNotFuel          = "D111" // referenced fuel item has no fuel data
	ErrMissingWater     = "D112" // generator uses water but db has no water item
)

// ValidationError describes one problem found in a database file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// InvalidDatabaseError reports that a custom database file failed
// validation.
type InvalidDatabaseError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *InvalidDatabaseError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid database: %s", e.Errors[0].Error())
	}
	return fmt.Sprintf("invalid database: %d problems found", len(e.Errors))
}

// ValidateDatabase checks a raw database file against the embedded
// schema and then cross-checks every id reference. It returns all
// errors found rather than stopping at the first.
func ValidateDatabase(data []byte) []ValidationError {
	if errs := validateSchema(data); len(errs) > 0 {
		return errs
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return []ValidationError{{
			Field:   "database",
			Message: err.Error(),
			Code:    ErrDatabaseParse,
		}}
	}
	return checkReferences(&db)
}

// LoadCustom validates and decodes a custom database file.
func LoadCustom(data []byte) (*Database, error) {
	if errs := ValidateDatabase(data); len(errs) > 0 {
		return nil, &InvalidDatabaseError{Errors: errs}
	}
	db := new(Database)
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("decoding database: %w", err)
	}
	return db, nil
}

// validateSchema unifies the raw file with the #Database definition
// from schema.cue and collects any structural errors.
func validateSchema(data []byte) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded, so this only fires on a build
		// problem within this package.
		return []ValidationError{{
			Field:   "schema",
			Message: fmt.Sprintf("compiling embedded schema: %v", err),
			Code:    ErrDatabaseSchema,
		}}
	}
	dbDef := schema.LookupPath(cue.ParsePath("#Database"))
	if err := dbDef.Err(); err != nil {
		return []ValidationError{{
			Field:   "schema",
			Message: fmt.Sprintf("looking up #Database: %v", err),
			Code:    ErrDatabaseSchema,
		}}
	}

	doc := ctx.CompileBytes(data, cue.Filename("database.json"))
	if err := doc.Err(); err != nil {
		return []ValidationError{{
			Field:   "database",
			Message: fmt.Sprintf("parsing database file: %v", err),
			Code:    ErrDatabaseParse,
		}}
	}

	unified := dbDef.Unify(doc)
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}
	var errs []ValidationError
	for _, cerr := range cueerrors.Errors(err) {
		errs = append(errs, ValidationError{
			Field:   strings.Join(cerr.Path(), "."),
			Message: cerr.Error(),
			Code:    ErrDatabaseSchema,
		})
	}
	return errs
}

// checkReferences verifies that every cross-reference in the database
// names something that exists, and that fuel references point at
// items with fuel data.
func checkReferences(db *Database) []ValidationError {
	var errs []ValidationError

	badRecipe := func(field string, id RecipeID) ValidationError {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("recipe %s is not defined", id),
			Code:    ErrUnknownReference,
		}
	}
	badItem := func(field string, id ItemID) ValidationError {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("item %s is not defined", id),
			Code:    ErrUnknownReference,
		}
	}
	badBuilding := func(field string, id BuildingID) ValidationError {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("building %s is not defined", id),
			Code:    ErrUnknownReference,
		}
	}
	checkFuel := func(field string, id ItemID) {
		item, ok := db.Item(id)
		switch {
		case !ok:
			errs = append(errs, badItem(field, id))
		case item.Fuel == nil:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("item %s has no fuel data", id),
				Code:    ErrNotFuel,
			})
		}
	}

	for _, recipe := range db.Recipes() {
		for i, ing := range recipe.Ingredients {
			if _, ok := db.Item(ing.Item); !ok {
				errs = append(errs, badItem(fmt.Sprintf("recipes.%s.ingredients[%d]", recipe.ID, i), ing.Item))
			}
		}
		for i, prod := range recipe.Products {
			if _, ok := db.Item(prod.Item); !ok {
				errs = append(errs, badItem(fmt.Sprintf("recipes.%s.products[%d]", recipe.ID, i), prod.Item))
			}
		}
		for i, building := range recipe.ProducedIn {
			if _, ok := db.Building(building); !ok {
				errs = append(errs, badBuilding(fmt.Sprintf("recipes.%s.produced_in[%d]", recipe.ID, i), building))
			}
		}
	}

	for _, item := range db.Items() {
		for i, id := range item.ProducedBy {
			if _, ok := db.Recipe(id); !ok {
				errs = append(errs, badRecipe(fmt.Sprintf("items.%s.produced_by[%d]", item.ID, i), id))
			}
		}
		for i, id := range item.ConsumedBy {
			if _, ok := db.Recipe(id); !ok {
				errs = append(errs, badRecipe(fmt.Sprintf("items.%s.consumed_by[%d]", item.ID, i), id))
			}
		}
		for i, id := range item.MinedBy {
			if _, ok := db.Building(id); !ok {
				errs = append(errs, badBuilding(fmt.Sprintf("items.%s.mined_by[%d]", item.ID, i), id))
			}
		}
		if item.Fuel != nil {
			for i, by := range item.Fuel.Byproducts {
				if _, ok := db.Item(by.Item); !ok {
					errs = append(errs, badItem(fmt.Sprintf("items.%s.fuel.byproducts[%d]", item.ID, i), by.Item))
				}
			}
		}
	}

	for _, building := range db.Buildings() {
		field := fmt.Sprintf("buildings.%s.kind", building.ID)
		switch kind := building.Kind.(type) {
		case Manufacturer:
			for i, id := range kind.AvailableRecipes {
				if _, ok := db.Recipe(id); !ok {
					errs = append(errs, badRecipe(fmt.Sprintf("%s.available_recipes[%d]", field, i), id))
				}
			}
		case Miner:
			for i, id := range kind.AllowedResources {
				if _, ok := db.Item(id); !ok {
					errs = append(errs, badItem(fmt.Sprintf("%s.allowed_resources[%d]", field, i), id))
				}
			}
		case Generator:
			for i, id := range kind.AllowedFuel {
				checkFuel(fmt.Sprintf("%s.allowed_fuel[%d]", field, i), id)
			}
			if kind.UsedWater > 0 {
				if _, ok := db.Item(Water); !ok {
					errs = append(errs, ValidationError{
						Field:   field + ".used_water",
						Message: fmt.Sprintf("generator uses water but item %s is not defined", Water),
						Code:    ErrMissingWater,
					})
				}
			}
		case Pump:
			for i, id := range kind.AllowedResources {
				if _, ok := db.Item(id); !ok {
					errs = append(errs, badItem(fmt.Sprintf("%s.allowed_resources[%d]", field, i), id))
				}
			}
		case Station:
			// Stations deduct fuel at a configured rate, so the
			// item does not need fuel data.
			for i, id := range kind.AllowedFuel {
				if _, ok := db.Item(id); !ok {
					errs = append(errs, badItem(fmt.Sprintf("%s.allowed_fuel[%d]", field, i), id))
				}
			}
		}
	}

	return errs
}
