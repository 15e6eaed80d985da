// Package world bundles a factory tree with the database it is
// built against and manages editing sessions over it.
//
// A World is the unit of persistence: the database choice, the root
// of the accounting tree, and per-group display metadata, saved and
// loaded together as a versioned JSON document.
//
// A Manager owns one world while it is being edited. Every edit
// builds a replacement tree and records the previous root and
// database choice on a bounded undo stack, so undo and redo are
// pointer swaps. Edits that cannot be applied log a warning and
// leave the world unchanged.
package world
