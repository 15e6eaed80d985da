// Package gamedb provides the static game database: items, recipes,
// building types, and the versioned catalog of embedded datasets.
//
// This package contains data definitions and lookups only. All other
// internal packages import gamedb; gamedb imports nothing internal.
// This keeps the database the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - A Database is immutable after construction. Lookups return
//     (*T, bool); iteration order is always sorted by ID so output
//     is deterministic.
//   - IDs are typed strings serialized as plain JSON strings.
//   - Embedded datasets are parsed once and cached; callers share the
//     cached Database and must not mutate returned values.
package gamedb
