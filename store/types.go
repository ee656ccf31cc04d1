package store

import (
	"github.com/tessalab/own-runtime/heap"
)

// Event types for ownership lifecycle notifications.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventMoved
	EventDuplicated
	EventBorrowed
	EventBorrowReturned
	EventReleased
	EventScopeEntered
	EventScopeClosed
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventMoved:
		return "moved"
	case EventDuplicated:
		return "duplicated"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow-returned"
	case EventReleased:
		return "released"
	case EventScopeEntered:
		return "scope-entered"
	case EventScopeClosed:
		return "scope-closed"
	default:
		return "?"
	}
}

// Event represents an ownership lifecycle event.
type Event struct {
	Type     EventType
	Binding  string // binding involved; destination for moves and duplicates
	From     string // source binding for moves and duplicates
	Scope    string // label of the scope the event occurred in
	Resource heap.ID
}

// Observer receives notifications about ownership lifecycle events.
type Observer interface {
	OnOwnershipEvent(Event)
}

// View is a read view of a binding's resource.
//
// Bytes is the live buffer, valid until the resource is released; callers
// that need to retain it should Duplicate instead.
type View struct {
	Bytes    []byte
	Resource heap.ID
	Len      int
	Cap      int
}

// Binding is a named slot owning at most one live resource.
// A Binding is valid while it owns a resource; Move and Release invalidate
// it, and any later use fails with a use_after_move error.
type Binding struct {
	name     string
	scope    *Scope
	id       heap.ID
	borrows  int
	valid    bool
	released bool
}

// Name returns the binding's name.
func (b *Binding) Name() string {
	return b.name
}

// Valid reports whether the binding currently owns a live resource.
func (b *Binding) Valid() bool {
	return b.valid
}

// Resource returns the owned resource's ID, or the zero ID if the binding
// has been invalidated.
func (b *Binding) Resource() heap.ID {
	if !b.valid {
		return heap.ID{}
	}
	return b.id
}
