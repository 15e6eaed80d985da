package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/world"
)

// openStore opens a store in a temp directory and closes it with the
// test.
func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

// namedWorld returns an empty world whose root group carries a name.
func namedWorld(t *testing.T, name string) *world.World {
	t.Helper()
	w := world.New()
	g, ok := w.Root.Group()
	require.True(t, ok)
	g.Name = name
	w.Root = accounting.NewGroupNode(g)
	return w
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Opening again must not fail on the existing schema.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpenPragmas(t *testing.T) {
	s := openStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSaveAndLoadWorld(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := world.NewID()

	require.NoError(t, s.SaveWorld(ctx, id, namedWorld(t, "Iron Planet")))

	loaded, err := s.LoadWorld(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Iron Planet", loaded.Name())

	version, ok := loaded.Database.StandardVersion()
	require.True(t, ok)
	assert.Equal(t, gamedb.Latest(), version)
}

func TestSaveWorldOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := world.NewID()

	require.NoError(t, s.SaveWorld(ctx, id, namedWorld(t, "before")))
	require.NoError(t, s.SaveWorld(ctx, id, namedWorld(t, "after")))

	loaded, err := s.LoadWorld(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Name())

	worlds, err := s.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, worlds, 1)
}

func TestSaveWorldRejectsZeroID(t *testing.T) {
	s := openStore(t)
	err := s.SaveWorld(context.Background(), world.ID{}, namedWorld(t, "nameless"))
	require.Error(t, err)
}

func TestLoadWorldNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.LoadWorld(context.Background(), world.NewID())
	require.ErrorIs(t, err, ErrWorldNotFound)
}

func TestListWorldsOrdersByRecency(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, second := world.NewID(), world.NewID()
	require.NoError(t, s.SaveWorld(ctx, first, namedWorld(t, "first")))
	require.NoError(t, s.SaveWorld(ctx, second, namedWorld(t, "second")))

	worlds, err := s.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, worlds, 2)
	assert.Equal(t, "second", worlds[0].Name)
	assert.Equal(t, "first", worlds[1].Name)

	// Re-saving the oldest world makes it the most recent.
	require.NoError(t, s.SaveWorld(ctx, first, namedWorld(t, "first")))
	worlds, err = s.ListWorlds(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, worlds[0].ID)
}

func TestListWorldsEmpty(t *testing.T) {
	s := openStore(t)
	worlds, err := s.ListWorlds(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, worlds)
	assert.Empty(t, worlds)
}

func TestListWorldsCarriesVersion(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := world.NewID()

	w := namedWorld(t, "older")
	w.Database = world.StandardDatabase(gamedb.VersionU8Final)
	require.NoError(t, s.SaveWorld(ctx, id, w))

	worlds, err := s.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, worlds, 1)
	assert.Equal(t, gamedb.VersionU8Final, worlds[0].Version)
}

func TestSelection(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, ok, err := s.Selected(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store has no selection")

	id := world.NewID()
	require.NoError(t, s.SaveWorld(ctx, id, namedWorld(t, "current")))
	require.NoError(t, s.SetSelected(ctx, id))

	selected, ok, err := s.Selected(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, selected)

	// Selection moves to another world.
	other := world.NewID()
	require.NoError(t, s.SaveWorld(ctx, other, namedWorld(t, "next")))
	require.NoError(t, s.SetSelected(ctx, other))

	selected, ok, err = s.Selected(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, other, selected)
}

func TestSetSelectedRequiresStoredWorld(t *testing.T) {
	s := openStore(t)
	err := s.SetSelected(context.Background(), world.NewID())
	require.ErrorIs(t, err, ErrWorldNotFound)
}

func TestDeleteWorld(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	id := world.NewID()

	require.NoError(t, s.SaveWorld(ctx, id, namedWorld(t, "doomed")))
	require.NoError(t, s.DeleteWorld(ctx, id))

	_, err := s.LoadWorld(ctx, id)
	require.ErrorIs(t, err, ErrWorldNotFound)

	require.ErrorIs(t, s.DeleteWorld(ctx, id), ErrWorldNotFound)
}

func TestDeleteWorldClearsSelection(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	kept, doomed := world.NewID(), world.NewID()
	require.NoError(t, s.SaveWorld(ctx, kept, namedWorld(t, "kept")))
	require.NoError(t, s.SaveWorld(ctx, doomed, namedWorld(t, "doomed")))
	require.NoError(t, s.SetSelected(ctx, doomed))

	require.NoError(t, s.DeleteWorld(ctx, doomed))

	_, ok, err := s.Selected(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "selection must not point at a deleted world")

	// Deleting an unselected world leaves the selection alone.
	require.NoError(t, s.SetSelected(ctx, kept))
	extra := world.NewID()
	require.NoError(t, s.SaveWorld(ctx, extra, namedWorld(t, "extra")))
	require.NoError(t, s.DeleteWorld(ctx, extra))

	selected, ok, err := s.Selected(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kept, selected)
}
