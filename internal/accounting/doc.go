// Package accounting implements the factory accounting tree.
//
// The tree is the heart of tally: groups aggregate the balances of
// their children, and building leaves compute their own balance from
// a building type, its settings, and the game database.
//
// ARCHITECTURE:
//
// Immutable Nodes:
// Nodes are never modified in place. Every edit builds replacement
// nodes along the path from the changed node up to the root, sharing
// all untouched subtrees. This makes undo/redo a matter of keeping
// old roots, and guarantees a node's cached balance never goes stale.
//
// Balance Computation Flow:
//  1. A Building resolves its type in the database.
//  2. The settings kind must match the building kind.
//  3. The per-kind rate formulas produce a Balance.
//  4. The Balance is scaled by the node's copy count.
//  5. Groups sum child balances and scale by their own copy count.
//
// Failure Degrades, Never Propagates:
// When a building cannot be built against the database (missing id,
// mismatched settings, incompatible recipe), the node is replaced by
// a warning node with a zero balance. The rest of the tree keeps
// computing normally. Strict callers (edits) instead reject the
// change and keep the previous tree.
package accounting
