// Package heap provides the slot-array backend for owned resources.
//
// An Arena stores growable byte buffers in a slot array with a free list.
// Each live resource is identified by an ID carrying both its slot and a
// generation tag; releasing a resource bumps the slot's generation, so a
// stale ID can never observe a recycled slot.
//
//	arena := heap.NewArena()
//
//	id, err := arena.Create([]byte("hello"), nil)
//	data, ok := arena.Get(id)
//	freed := arena.Release(id)
//
// The arena counts allocations and releases; Stats exposes the counters so
// callers can assert the exactly-once release property:
//
//	st := arena.Stats()
//	if st.Live() != 0 {
//	    // leak
//	}
//
// Arena is internally synchronized. Ownership semantics (which binding may
// call Release) live a level up, in the store package; the arena only
// guarantees that a given resource is freed at most once and that stale IDs
// are detectable.
package heap
