package heap

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	ownruntime "github.com/tessalab/own-runtime"
)

// ErrClosed is returned by Create after the arena has been closed.
var ErrClosed = errors.New("arena closed")

// ID identifies a resource in an Arena. The zero ID is always invalid.
// An ID is only satisfied while its generation matches the slot's current
// generation, so IDs held past a release go stale instead of aliasing
// whatever the slot is reused for.
type ID struct {
	Slot uint32
	Gen  uint32
}

// IsZero reports whether the ID is the invalid zero value.
func (id ID) IsZero() bool {
	return id.Slot == 0
}

// String returns the ID in r<slot>@<gen> form.
func (id ID) String() string {
	if id.IsZero() {
		return "r0"
	}
	return fmt.Sprintf("r%d@%d", id.Slot, id.Gen)
}

// Stats holds the arena's lifetime counters.
type Stats struct {
	Allocated uint64
	Released  uint64
}

// Live returns the number of resources allocated but not yet released.
func (s Stats) Live() int {
	return int(s.Allocated - s.Released)
}

// Arena is an in-memory resource backend with generation-tagged slot reuse.
type Arena struct {
	entries  []entry
	freeList []uint32
	stats    Stats
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	data  []byte
	final ownruntime.Releaser
	gen   uint32
	valid bool
}

// NewArena creates a new in-memory arena.
func NewArena() *Arena {
	return &Arena{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Create copies data into a fresh resource and returns its ID.
// final, if non-nil, runs exactly once when the resource is released.
func (a *Arena) Create(data []byte, final ownruntime.Releaser) (ID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ID{}, ErrClosed
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	a.stats.Allocated++

	if len(a.freeList) > 0 {
		slot := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		e := &a.entries[slot-1]
		e.data = buf
		e.final = final
		e.valid = true
		return ID{Slot: slot, Gen: e.gen}, nil
	}

	a.entries = append(a.entries, entry{
		data:  buf,
		final: final,
		gen:   1,
		valid: true,
	})
	return ID{Slot: uint32(len(a.entries)), Gen: 1}, nil
}

// Get returns the resource's bytes, or false if the ID is stale or invalid.
// The returned slice is the live buffer; callers must not retain it past the
// resource's release.
func (a *Arena) Get(id ID) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.lookup(id)
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Size returns the resource's length and capacity.
func (a *Arena) Size(id ID) (length, capacity int, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.lookup(id)
	if !ok {
		return 0, 0, false
	}
	return len(e.data), cap(e.data), true
}

// Append grows the resource's buffer in place.
func (a *Arena) Append(id ID, data []byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.lookup(id)
	if !ok {
		return false
	}
	e.data = append(e.data, data...)
	return true
}

// Release frees the resource and runs its finalizer. Returns false if the ID
// is stale or already released; the resource is never freed twice.
func (a *Arena) Release(id ID) bool {
	a.mu.Lock()

	e, ok := a.lookup(id)
	if !ok {
		a.mu.Unlock()
		return false
	}

	final := e.final
	e.data = nil
	e.final = nil
	e.valid = false
	e.gen++
	a.freeList = append(a.freeList, id.Slot)
	a.stats.Released++
	a.mu.Unlock()

	if final != nil {
		final.Release()
	}
	return true
}

// Stats returns a copy of the lifetime counters.
func (a *Arena) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Len returns the number of live resources.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats.Live()
}

// Each iterates over all live resources.
func (a *Arena) Each(fn func(ID, []byte) bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := range a.entries {
		e := &a.entries[i]
		if e.valid {
			if !fn(ID{Slot: uint32(i + 1), Gen: e.gen}, e.data) {
				break
			}
		}
	}
}

// Close releases every live resource and stops accepting operations.
func (a *Arena) Close() error {
	a.mu.Lock()

	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true

	forced := 0
	var finals []ownruntime.Releaser
	for i := range a.entries {
		e := &a.entries[i]
		if e.valid {
			if e.final != nil {
				finals = append(finals, e.final)
			}
			e.data = nil
			e.final = nil
			e.valid = false
			e.gen++
			a.stats.Released++
			forced++
		}
	}
	a.entries = nil
	a.freeList = nil
	a.mu.Unlock()

	if forced > 0 {
		Logger().Warn("arena closed with live resources",
			zap.Int("forced_releases", forced))
	}

	for _, f := range finals {
		f.Release()
	}
	return nil
}

// lookup resolves an ID to its entry. Caller holds a.mu.
func (a *Arena) lookup(id ID) (*entry, bool) {
	if id.Slot == 0 || int(id.Slot) > len(a.entries) {
		return nil, false
	}
	e := &a.entries[id.Slot-1]
	if !e.valid || e.gen != id.Gen {
		return nil, false
	}
	return e, true
}
