package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/world"
)

// LoadWorld reads the world saved under the given id. Returns
// ErrWorldNotFound if no world has the id. The returned world has
// not been rebuilt; callers open it through world.NewManager or call
// PostLoad themselves.
func (s *Store) LoadWorld(ctx context.Context, id world.ID) (*world.World, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM worlds WHERE id = ?
	`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load world %s: %w", id, ErrWorldNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	var w world.World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("load world %s: %w", id, err)
	}
	return &w, nil
}

// ListWorlds returns metadata for every stored world, most recently
// saved first, with id as a tiebreak. The result is never nil.
func (s *Store) ListWorlds(ctx context.Context) ([]world.Metadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version FROM worlds
		ORDER BY seq DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	defer rows.Close()

	worlds := []world.Metadata{}
	for rows.Next() {
		var rawID, name, version string
		if err := rows.Scan(&rawID, &name, &version); err != nil {
			return nil, fmt.Errorf("list worlds: scan: %w", err)
		}
		id, err := world.ParseID(rawID)
		if err != nil {
			return nil, fmt.Errorf("list worlds: bad id %q: %w", rawID, err)
		}
		worlds = append(worlds, world.Metadata{
			ID:      id,
			Name:    name,
			Version: gamedb.VersionID(version),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	return worlds, nil
}

// Selected returns the id of the selected world. It reports false
// when no world is selected.
func (s *Store) Selected(ctx context.Context) (world.ID, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, selectedKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return world.ID{}, false, nil
	}
	if err != nil {
		return world.ID{}, false, fmt.Errorf("read selection: %w", err)
	}
	id, err := world.ParseID(value)
	if err != nil {
		return world.ID{}, false, fmt.Errorf("read selection: bad id %q: %w", value, err)
	}
	return id, true, nil
}
