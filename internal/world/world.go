package world

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/gamedb"
)

// World is the unit of persistence: one factory tree, the database
// choice it is built against, and display metadata for its groups.
type World struct {
	// Database selects the database the tree is built against.
	Database DatabaseChoice
	// Root of the accounting tree. Always a group.
	Root *accounting.Node
	// Metas holds display metadata for the tree's groups.
	Metas NodeMetas
}

// New returns an empty world on the default database choice.
func New() *World {
	return &World{
		Database: DefaultDatabaseChoice(),
		Root:     accounting.NewGroupNode(accounting.NewGroup()),
		Metas:    NodeMetas{},
	}
}

// Name returns the world's name, which is the name of its root group.
func (w *World) Name() string {
	if w.Root == nil {
		return ""
	}
	g, ok := w.Root.Group()
	if !ok {
		return ""
	}
	return g.Name
}

// Metadata summarizes the world for listings.
func (w *World) Metadata(id ID) Metadata {
	version, _ := w.Database.StandardVersion()
	return Metadata{ID: id, Name: w.Name(), Version: version}
}

// PostLoad loads the chosen database and rebuilds the tree against
// it, degrading buildings the database no longer knows to warning
// nodes. Call it after decoding a save file and before using the
// world.
func (w *World) PostLoad() (*gamedb.Database, error) {
	db, err := w.Database.Load()
	if err != nil {
		return nil, err
	}
	w.Root = w.Root.Rebuild(db)
	return db, nil
}

// Metadata is the summary of a world kept in store listings, so that
// listing worlds does not decode every tree.
type Metadata struct {
	// ID of the world in the store.
	ID ID `json:"id"`
	// Name of the world. May be empty.
	Name string `json:"name,omitempty"`
	// Version is the standard database version the world uses. Empty
	// when the world carries a custom database.
	Version gamedb.VersionID `json:"version,omitempty"`
}

// ModelVersion tags the save file format written by this package.
// Files declaring any other version are rejected rather than decoded
// into the wrong shape.
const ModelVersion = "v1.2.*"

// UnknownModelVersionError reports a save file declaring a model
// version this build does not understand.
type UnknownModelVersionError struct {
	// Version the file declared. Empty when the file carried none.
	Version string
}

func (e *UnknownModelVersionError) Error() string {
	if e.Version == "" {
		return "save file does not declare a model version"
	}
	return fmt.Sprintf("save file has unsupported model version %q", e.Version)
}

// AsUnknownModelVersionError unwraps err as an
// UnknownModelVersionError.
func AsUnknownModelVersionError(err error) (*UnknownModelVersionError, bool) {
	var uve *UnknownModelVersionError
	ok := errors.As(err, &uve)
	return uve, ok
}

type worldJSON struct {
	ModelVersion string           `json:"model_version"`
	Database     DatabaseChoice   `json:"database"`
	Root         *accounting.Node `json:"root"`
	Metas        NodeMetas        `json:"node_metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler. Worlds serialize as a save
// file envelope tagged with the model version.
func (w *World) MarshalJSON() ([]byte, error) {
	if w.Root == nil {
		return nil, fmt.Errorf("world has no root node")
	}
	return json.Marshal(worldJSON{
		ModelVersion: ModelVersion,
		Database:     w.Database,
		Root:         w.Root,
		Metas:        w.Metas,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A missing database
// choice defaults to the latest standard version and missing
// metadata to none, but the root node is required.
func (w *World) UnmarshalJSON(data []byte) error {
	var probe struct {
		ModelVersion string `json:"model_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("probing save file version: %w", err)
	}
	if probe.ModelVersion != ModelVersion {
		return &UnknownModelVersionError{Version: probe.ModelVersion}
	}
	var body worldJSON
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("decoding save file: %w", err)
	}
	if body.Root == nil {
		return fmt.Errorf("save file has no root node")
	}
	w.Database = body.Database
	w.Root = body.Root
	w.Metas = body.Metas
	return nil
}
