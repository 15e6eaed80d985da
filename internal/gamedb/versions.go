package gamedb

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data
var dataFS embed.FS

// VersionID identifies an embedded database version.
type VersionID string

// Embedded database versions, oldest first.
const (
	VersionU8Final    VersionID = "u8-final"
	VersionV10Initial VersionID = "v1.0-initial"
	VersionV10Geo     VersionID = "v1.0-geo"
)

// VersionInfo describes one embedded database version.
type VersionInfo struct {
	ID   VersionID `json:"id"`
	Name string    `json:"name"`
	// Description explains what changed in this version.
	Description string `json:"description"`
	// Deprecated versions are hidden from choosers but remain
	// loadable for worlds that still reference them.
	Deprecated bool `json:"deprecated"`
}

// versionEntry pairs catalog info with its embedded data file.
type versionEntry struct {
	info VersionInfo
	file string
}

var catalog = []versionEntry{
	{
		info: VersionInfo{
			ID:   VersionU8Final,
			Name: "U8 – Final",
			Description: "The final database released for Update 8. Kept for worlds " +
				"that have not migrated to 1.0.",
		},
		file: "db-u8-final.json",
	},
	{
		info: VersionInfo{
			ID:   VersionV10Initial,
			Name: "1.0 – Initial",
			Description: "The first database released for Satisfactory 1.0. Water " +
				"Extractors in this version produce no water.",
		},
		file: "db-v1.0-initial.json",
	},
	{
		info: VersionInfo{
			ID:   VersionV10Geo,
			Name: "1.0 – Geo",
			Description: "Fixes Water Extractors, and adds the Geothermal Generator, " +
				"the Balance Adjustment node, and nuclear waste byproducts.",
		},
		file: "db-v1.0-geo.json",
	},
}

// Latest returns the id of the newest embedded version.
func Latest() VersionID {
	return catalog[len(catalog)-1].info.ID
}

// Versions returns the catalog of embedded versions, oldest first.
// Every version other than the latest is marked deprecated.
func Versions() []VersionInfo {
	out := make([]VersionInfo, len(catalog))
	for i, entry := range catalog {
		out[i] = entry.info
		out[i].Deprecated = entry.info.ID != Latest()
	}
	return out
}

// LookupVersion returns catalog info for the given version id.
func LookupVersion(id VersionID) (VersionInfo, bool) {
	for _, entry := range catalog {
		if entry.info.ID == id {
			info := entry.info
			info.Deprecated = id != Latest()
			return info, true
		}
	}
	return VersionInfo{}, false
}

// UnknownVersionError reports a version id that is not in the
// embedded catalog.
type UnknownVersionError struct {
	ID VersionID
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown database version %q", e.ID)
}

var (
	loadMu sync.Mutex
	loaded = map[VersionID]*Database{}
)

// LoadVersion parses and returns the embedded database for a version.
// Parsed databases are cached, so repeated loads of the same version
// share one Database.
func LoadVersion(id VersionID) (*Database, error) {
	var file string
	for _, entry := range catalog {
		if entry.info.ID == id {
			file = entry.file
			break
		}
	}
	if file == "" {
		return nil, &UnknownVersionError{ID: id}
	}

	loadMu.Lock()
	defer loadMu.Unlock()
	if db, ok := loaded[id]; ok {
		return db, nil
	}
	raw, err := dataFS.ReadFile("data/" + file)
	if err != nil {
		return nil, fmt.Errorf("reading embedded database %s: %w", id, err)
	}
	db := new(Database)
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, fmt.Errorf("parsing embedded database %s: %w", id, err)
	}
	loaded[id] = db
	return db, nil
}

// LoadLatest returns the newest embedded database.
func LoadLatest() (*Database, error) {
	return LoadVersion(Latest())
}
