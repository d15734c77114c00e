// Package vtree defines the virtual tree description model and the
// incremental reconciler that turns two versions of a tree into a minimal
// sequence of platform mutations.
//
// A VNode describes one UI node: its kind, tag or component identity,
// attribute bag, ordered children and optional sibling key. The Patcher
// compares an old and a new description and drives a Platform, the fixed
// capability set of create/insert/remove/set primitives, to transform the
// materialized tree in place. Children are reconciled with a keyed
// four-pointer walk that resolves prepends, appends and single-range moves
// in O(1) per step, falling back to a lazily built key map only for genuine
// reordering.
package vtree
