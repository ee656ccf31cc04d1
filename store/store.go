package store

import (
	"sync"

	"go.uber.org/zap"

	ownruntime "github.com/tessalab/own-runtime"
	"github.com/tessalab/own-runtime/errors"
	"github.com/tessalab/own-runtime/heap"
)

// Store tracks which binding owns each live resource.
//
// A Store models a single logical thread of execution: operations are
// immediate and total, and ordering guarantees (scope release order, event
// order) only hold for single-threaded use. Internal locking exists so the
// store can be inspected concurrently, not to make ownership transfer a
// synchronization primitive.
type Store struct {
	arena     *heap.Arena
	root      *Scope
	top       *Scope
	observers []Observer
	obsMu     sync.RWMutex
	mu        sync.Mutex
}

// New creates a Store with a fresh arena and an open root scope.
func New() *Store {
	s := &Store{
		arena: heap.NewArena(),
	}
	s.root = &Scope{store: s, label: "root"}
	s.top = s.root
	return s
}

// Arena returns the backing arena, for stats and inspection.
func (s *Store) Arena() *heap.Arena {
	return s.arena
}

// Allocate creates a new resource holding a copy of data and returns a
// valid binding owning it, in the current scope.
func (s *Store) Allocate(name string, data []byte) (*Binding, error) {
	return s.AllocateWithFinalizer(name, data, nil)
}

// AllocateWithFinalizer is Allocate with a destructor that runs exactly
// once when the resource is released.
func (s *Store) AllocateWithFinalizer(name string, data []byte, final ownruntime.Releaser) (*Binding, error) {
	s.mu.Lock()

	id, err := s.arena.Create(data, final)
	if err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(errors.PhaseAllocate, errors.KindArenaClosed, err, "allocate "+name)
	}

	b := s.bind(name, id)
	scope := b.scope.label
	s.mu.Unlock()

	debugf("allocate %s -> %s", name, id)
	s.notify(Event{Type: EventAllocated, Binding: name, Scope: scope, Resource: id})
	return b, nil
}

// Move transfers ownership from one binding to a new one. The source is
// invalidated atomically; the returned binding owns the same resource and
// lives in the current scope. Fails with use_after_move if the source is
// already invalid, and with outstanding_borrow if it is borrowed.
func (s *Store) Move(from *Binding, name string) (*Binding, error) {
	s.mu.Lock()

	if !from.valid {
		s.mu.Unlock()
		return nil, errors.UseAfterMove(errors.PhaseMove, from.name)
	}
	if from.borrows > 0 {
		n := from.borrows
		s.mu.Unlock()
		return nil, errors.OutstandingBorrow(errors.PhaseMove, from.name, n)
	}

	id := from.id
	from.valid = false

	b := s.bind(name, id)
	scope := b.scope.label
	s.mu.Unlock()

	debugf("move %s -> %s (%s)", from.name, name, id)
	s.notify(Event{Type: EventMoved, Binding: name, From: from.name, Scope: scope, Resource: id})
	return b, nil
}

// Duplicate deep-copies the source's resource into a new, independent one
// and returns a valid binding owning the copy. The source stays valid.
func (s *Store) Duplicate(from *Binding, name string) (*Binding, error) {
	s.mu.Lock()

	if !from.valid {
		s.mu.Unlock()
		return nil, errors.UseAfterMove(errors.PhaseDuplicate, from.name)
	}

	data, ok := s.arena.Get(from.id)
	if !ok {
		s.mu.Unlock()
		return nil, errors.New(errors.PhaseDuplicate, errors.KindNotFound).
			Binding(from.name).
			Resource(from.id.String()).
			Detail("binding valid but resource missing").
			Build()
	}

	id, err := s.arena.Create(data, nil)
	if err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(errors.PhaseDuplicate, errors.KindArenaClosed, err, "duplicate "+from.name)
	}

	b := s.bind(name, id)
	scope := b.scope.label
	s.mu.Unlock()

	debugf("duplicate %s -> %s (%s -> %s)", from.name, name, from.id, id)
	s.notify(Event{Type: EventDuplicated, Binding: name, From: from.name, Scope: scope, Resource: id})
	return b, nil
}

// Access returns a read view of the binding's resource.
func (s *Store) Access(b *Binding) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(b, errors.PhaseAccess)
}

// Borrow grants temporary read access. While the borrow is outstanding the
// binding cannot be moved, mutated, or released. The returned func ends the
// borrow; calling it more than once is a no-op.
func (s *Store) Borrow(b *Binding) (View, func(), error) {
	s.mu.Lock()

	v, err := s.viewLocked(b, errors.PhaseBorrow)
	if err != nil {
		s.mu.Unlock()
		return View{}, nil, err
	}

	b.borrows++
	scope := b.scope.label
	s.mu.Unlock()

	s.notify(Event{Type: EventBorrowed, Binding: b.name, Scope: scope, Resource: v.Resource})

	var once sync.Once
	ret := func() {
		once.Do(func() {
			s.mu.Lock()
			if b.borrows > 0 {
				b.borrows--
			}
			s.mu.Unlock()
			s.notify(Event{Type: EventBorrowReturned, Binding: b.name, Scope: scope, Resource: v.Resource})
		})
	}
	return v, ret, nil
}

// Append grows the binding's resource in place. Mutation requires exclusive
// ownership: it fails while borrows are outstanding.
func (s *Store) Append(b *Binding, data []byte) error {
	s.mu.Lock()

	if !b.valid {
		s.mu.Unlock()
		return errors.UseAfterMove(errors.PhaseAccess, b.name)
	}
	if b.borrows > 0 {
		n := b.borrows
		s.mu.Unlock()
		return errors.OutstandingBorrow(errors.PhaseAccess, b.name, n)
	}

	ok := s.arena.Append(b.id, data)
	s.mu.Unlock()

	if !ok {
		return errors.New(errors.PhaseAccess, errors.KindNotFound).
			Binding(b.name).
			Resource(b.id.String()).
			Detail("binding valid but resource missing").
			Build()
	}
	return nil
}

// Release invalidates the binding and frees its resource. It reports
// whether a resource was actually freed.
//
// Releasing an already invalid binding never double-frees: it is a safe
// no-op that additionally returns a use_after_move error as a diagnostic,
// which callers mirroring scope-exit behavior may ignore.
func (s *Store) Release(b *Binding) (bool, error) {
	s.mu.Lock()

	freed, ev, err := s.releaseLocked(b, errors.PhaseRelease)
	s.mu.Unlock()

	if freed {
		s.notify(ev)
	}
	return freed, err
}

// Close closes every open scope, then the arena. Resources still owned are
// released; the first borrow-blocked release is reported.
func (s *Store) Close() error {
	var first error
	for {
		s.mu.Lock()
		top := s.top
		s.mu.Unlock()
		if err := top.Close(); err != nil {
			if first == nil {
				first = err
			} else {
				Logger().Warn("additional error during store close",
					zap.String("scope", top.label),
					zap.Error(err))
			}
		}
		if top == s.root {
			break
		}
	}
	if err := s.arena.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Subscribe adds an observer for lifecycle events.
func (s *Store) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Unsubscribe removes an observer.
func (s *Store) Unsubscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// bind creates a binding owning id in the current scope. Caller holds s.mu.
func (s *Store) bind(name string, id heap.ID) *Binding {
	b := &Binding{
		name:  name,
		id:    id,
		valid: true,
		scope: s.top,
	}
	s.top.bindings = append(s.top.bindings, b)
	return b
}

// viewLocked builds a read view. Caller holds s.mu.
func (s *Store) viewLocked(b *Binding, phase errors.Phase) (View, error) {
	if !b.valid {
		return View{}, errors.UseAfterMove(phase, b.name)
	}

	data, ok := s.arena.Get(b.id)
	if !ok {
		return View{}, errors.New(phase, errors.KindNotFound).
			Binding(b.name).
			Resource(b.id.String()).
			Detail("binding valid but resource missing").
			Build()
	}

	length, capacity, _ := s.arena.Size(b.id)
	return View{
		Bytes:    data,
		Resource: b.id,
		Len:      length,
		Cap:      capacity,
	}, nil
}

// releaseLocked frees b's resource. Caller holds s.mu; the returned event
// must be delivered after the lock is dropped.
func (s *Store) releaseLocked(b *Binding, phase errors.Phase) (bool, Event, error) {
	if !b.valid {
		return false, Event{}, errors.UseAfterMove(phase, b.name)
	}
	if b.borrows > 0 {
		return false, Event{}, errors.OutstandingBorrow(phase, b.name, b.borrows)
	}

	id := b.id
	b.valid = false
	b.released = true
	if !s.arena.Release(id) {
		return false, Event{}, errors.New(phase, errors.KindNotFound).
			Binding(b.name).
			Resource(id.String()).
			Detail("binding valid but resource missing").
			Build()
	}

	debugf("release %s (%s)", b.name, id)
	return true, Event{Type: EventReleased, Binding: b.name, Scope: b.scope.label, Resource: id}, nil
}

func (s *Store) notify(e Event) {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, o := range s.observers {
		o.OnOwnershipEvent(e)
	}
}
