// Package store provides SQLite-backed storage for saved worlds.
//
// Each world is one row: the save file as a JSON blob, with its name
// and database version denormalized so listings never decode a tree.
// A separate settings table remembers which world is selected, so the
// CLI can open "the current world" without being told an id.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// SQLite allows one writer at a time, so the connection pool is
// capped at a single connection.
package store
