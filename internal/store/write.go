package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/tally/internal/world"
)

// selectedKey is the settings row naming the selected world.
const selectedKey = "selected_world"

// ErrWorldNotFound reports an id with no stored world.
var ErrWorldNotFound = errors.New("world not found")

// SaveWorld writes a world under the given id, replacing any
// previous save. The world's name and database version are copied
// into their own columns for listings.
func (s *Store) SaveWorld(ctx context.Context, id world.ID, w *world.World) error {
	if id.IsZero() {
		return errors.New("save world: id is zero")
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("save world: encode: %w", err)
	}
	meta := w.Metadata(id)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO worlds (id, name, version, data, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM worlds))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			data = excluded.data,
			seq = excluded.seq
	`, id.String(), meta.Name, string(meta.Version), data)
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// DeleteWorld removes a stored world. Deleting the selected world
// also clears the selection. Returns ErrWorldNotFound if no world
// has the given id.
func (s *Store) DeleteWorld(ctx context.Context, id world.ID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete world: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete world: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete world: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete world %s: %w", id, ErrWorldNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM settings WHERE key = ? AND value = ?
	`, selectedKey, id.String())
	if err != nil {
		return fmt.Errorf("delete world: clear selection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete world: commit: %w", err)
	}
	return nil
}

// SetSelected marks a stored world as the selected one. The world
// must exist.
func (s *Store) SetSelected(ctx context.Context, id world.ID) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM worlds WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("select world %s: %w", id, ErrWorldNotFound)
	}
	if err != nil {
		return fmt.Errorf("select world: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, selectedKey, id.String())
	if err != nil {
		return fmt.Errorf("select world: %w", err)
	}
	return nil
}
