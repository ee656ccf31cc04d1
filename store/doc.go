// Package store implements the single-owner binding model on top of the
// heap arena.
//
// A Store tracks named Bindings, each owning at most one live resource.
// Move transfers ownership and invalidates the source binding; Duplicate
// deep-copies into an independent resource; Release frees exactly once.
// Bindings live inside nestable Scopes, and closing a scope releases its
// still-valid bindings in reverse creation order.
//
// Every operation that touches an invalidated binding fails with a
// use_after_move error rather than misbehaving silently. Borrows provide
// temporary read access: a binding with outstanding borrows cannot be
// moved, mutated, or released.
//
// Lifecycle observers receive an ordered stream of events (allocated,
// moved, duplicated, borrowed, released, scope entered/closed); the trace
// package records them for verification.
package store
