package world

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tally/internal/gamedb"
)

// DatabaseChoice selects the database a world is built against:
// either one of the standard versions that ship with tally, or a
// custom database carried inside the world's save file.
//
// The zero value selects the latest standard version.
type DatabaseChoice struct {
	version gamedb.VersionID
	custom  *gamedb.Database
}

// StandardDatabase chooses the standard database with the given
// version.
func StandardDatabase(version gamedb.VersionID) DatabaseChoice {
	return DatabaseChoice{version: version}
}

// CustomDatabase chooses a database carried in the save file itself.
func CustomDatabase(db *gamedb.Database) DatabaseChoice {
	return DatabaseChoice{custom: db}
}

// DefaultDatabaseChoice is the choice for new worlds: the latest
// standard version.
func DefaultDatabaseChoice() DatabaseChoice {
	return StandardDatabase(gamedb.Latest())
}

// Load returns the chosen database, parsing the embedded data for
// standard versions.
func (c DatabaseChoice) Load() (*gamedb.Database, error) {
	if c.custom != nil {
		return c.custom, nil
	}
	if c.version == "" {
		return gamedb.LoadLatest()
	}
	return gamedb.LoadVersion(c.version)
}

// IsCustom reports whether the choice is a custom database.
func (c DatabaseChoice) IsCustom() bool {
	return c.custom != nil
}

// StandardVersion returns the chosen standard version. It reports
// false for custom databases.
func (c DatabaseChoice) StandardVersion() (gamedb.VersionID, bool) {
	if c.custom != nil {
		return "", false
	}
	if c.version == "" {
		return gamedb.Latest(), true
	}
	return c.version, true
}

// Equal reports whether two choices select the same database.
func (c DatabaseChoice) Equal(other DatabaseChoice) bool {
	if c.custom != nil || other.custom != nil {
		return c.custom != nil && other.custom != nil && c.custom.EquivalentTo(other.custom)
	}
	cv, _ := c.StandardVersion()
	ov, _ := other.StandardVersion()
	return cv == ov
}

// Database choice discriminators in the wire format.
const (
	choiceKindStandard = "Standard"
	choiceKindCustom   = "Custom"
)

type databaseChoiceJSON struct {
	Kind     string           `json:"kind"`
	Version  gamedb.VersionID `json:"version,omitempty"`
	Database *gamedb.Database `json:"database,omitempty"`
}

// MarshalJSON implements json.Marshaler using a flat envelope with a
// "kind" discriminator.
func (c DatabaseChoice) MarshalJSON() ([]byte, error) {
	if c.custom != nil {
		return json.Marshal(databaseChoiceJSON{Kind: choiceKindCustom, Database: c.custom})
	}
	version, _ := c.StandardVersion()
	return json.Marshal(databaseChoiceJSON{Kind: choiceKindStandard, Version: version})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *DatabaseChoice) UnmarshalJSON(data []byte) error {
	var body databaseChoiceJSON
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("decoding database choice: %w", err)
	}
	switch body.Kind {
	case choiceKindStandard:
		if _, ok := gamedb.LookupVersion(body.Version); !ok {
			return &gamedb.UnknownVersionError{ID: body.Version}
		}
		*c = StandardDatabase(body.Version)
	case choiceKindCustom:
		if body.Database == nil {
			return fmt.Errorf("custom database choice has no database")
		}
		*c = CustomDatabase(body.Database)
	case "":
		return fmt.Errorf("database choice is missing the %q field", "kind")
	default:
		return fmt.Errorf("unknown database choice kind %q", body.Kind)
	}
	return nil
}
