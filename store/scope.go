package store

import (
	"go.uber.org/zap"

	"github.com/tessalab/own-runtime/errors"
)

// Scope is a nestable lifetime region. Bindings are created in the store's
// current (innermost open) scope; closing a scope releases its still-valid
// bindings in reverse creation order.
type Scope struct {
	store    *Store
	label    string
	bindings []*Binding
	parent   *Scope
	closed   bool
}

// EnterScope opens a new scope nested inside the current one. It becomes
// the store's current scope until closed.
func (s *Store) EnterScope(label string) *Scope {
	s.mu.Lock()
	sc := &Scope{store: s, label: label, parent: s.top}
	s.top = sc
	s.mu.Unlock()

	s.notify(Event{Type: EventScopeEntered, Scope: label})
	return sc
}

// Label returns the scope's label.
func (sc *Scope) Label() string {
	return sc.label
}

// Close releases every still-valid binding created in the scope, newest
// first, then reinstates the parent as the current scope. Scopes nested
// inside sc are closed first, mirroring block exit. Close is idempotent.
//
// A binding with outstanding borrows cannot be freed; the first such
// binding is reported, after the rest of the scope has been released.
func (sc *Scope) Close() error {
	var first error

	// Inner scopes exit before this one.
	for {
		sc.store.mu.Lock()
		top := sc.store.top
		sc.store.mu.Unlock()
		if top == sc || sc.closed {
			break
		}
		inTree := false
		for p := top; p != nil; p = p.parent {
			if p == sc {
				inTree = true
				break
			}
		}
		if !inTree {
			break
		}
		if err := top.Close(); err != nil && first == nil {
			first = err
		}
	}

	sc.store.mu.Lock()
	if sc.closed {
		sc.store.mu.Unlock()
		return first
	}
	sc.closed = true

	var events []Event
	for i := len(sc.bindings) - 1; i >= 0; i-- {
		b := sc.bindings[i]
		if !b.valid {
			continue
		}
		freed, ev, err := sc.store.releaseLocked(b, errors.PhaseScope)
		if freed {
			events = append(events, ev)
		} else if err != nil {
			Logger().Warn("scope close left binding live",
				zap.String("scope", sc.label),
				zap.String("binding", b.name),
				zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}

	if sc.parent != nil && sc.store.top == sc {
		sc.store.top = sc.parent
	}
	sc.store.mu.Unlock()

	for _, ev := range events {
		sc.store.notify(ev)
	}
	sc.store.notify(Event{Type: EventScopeClosed, Scope: sc.label})
	return first
}
