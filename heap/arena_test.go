package heap

import (
	"bytes"
	"errors"
	"testing"
)

func TestArena_Basic(t *testing.T) {
	a := NewArena()

	// Create a resource
	id, err := a.Create([]byte("test value"), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id.IsZero() {
		t.Fatal("Expected non-zero ID")
	}

	// Get it back
	data, ok := a.Get(id)
	if !ok {
		t.Fatal("Get failed")
	}
	if !bytes.Equal(data, []byte("test value")) {
		t.Fatalf("Expected 'test value', got %q", data)
	}

	// Release it
	if !a.Release(id) {
		t.Fatal("Release failed")
	}

	// Should not exist anymore
	_, ok = a.Get(id)
	if ok {
		t.Fatal("Expected Get to fail after Release")
	}
}

func TestArena_CreateCopiesInput(t *testing.T) {
	a := NewArena()

	src := []byte("mutable")
	id, err := a.Create(src, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	src[0] = 'X'

	data, _ := a.Get(id)
	if data[0] != 'm' {
		t.Fatal("Create must copy its input, not alias it")
	}
}

func TestArena_StaleIDAfterSlotReuse(t *testing.T) {
	a := NewArena()

	old, _ := a.Create([]byte("first"), nil)
	if !a.Release(old) {
		t.Fatal("Release failed")
	}

	// The freed slot is recycled for the next allocation.
	fresh, _ := a.Create([]byte("second"), nil)
	if fresh.Slot != old.Slot {
		t.Fatalf("Expected slot %d to be reused, got %d", old.Slot, fresh.Slot)
	}
	if fresh.Gen == old.Gen {
		t.Fatal("Recycled slot must carry a new generation")
	}

	// The stale ID must not observe the new resource.
	if _, ok := a.Get(old); ok {
		t.Fatal("Stale ID resolved after slot reuse")
	}
	if a.Release(old) {
		t.Fatal("Stale ID released after slot reuse")
	}

	data, ok := a.Get(fresh)
	if !ok || !bytes.Equal(data, []byte("second")) {
		t.Fatalf("Fresh ID should resolve to 'second', got %q (ok=%v)", data, ok)
	}
}

func TestArena_DoubleReleaseIsNoop(t *testing.T) {
	a := NewArena()

	id, _ := a.Create([]byte("once"), nil)
	if !a.Release(id) {
		t.Fatal("First release failed")
	}
	if a.Release(id) {
		t.Fatal("Second release should be a no-op")
	}

	st := a.Stats()
	if st.Allocated != 1 || st.Released != 1 {
		t.Fatalf("Expected counters 1/1, got %d/%d", st.Allocated, st.Released)
	}
}

func TestArena_AppendGrows(t *testing.T) {
	a := NewArena()

	id, _ := a.Create([]byte("hello"), nil)
	if !a.Append(id, []byte(", world")) {
		t.Fatal("Append failed")
	}

	data, _ := a.Get(id)
	if string(data) != "hello, world" {
		t.Fatalf("Expected 'hello, world', got %q", data)
	}

	length, capacity, ok := a.Size(id)
	if !ok {
		t.Fatal("Size failed")
	}
	if length != len("hello, world") {
		t.Fatalf("Expected length %d, got %d", len("hello, world"), length)
	}
	if capacity < length {
		t.Fatalf("Capacity %d smaller than length %d", capacity, length)
	}
}

type releaseCounter struct {
	count int
}

func (r *releaseCounter) Release() {
	r.count++
}

func TestArena_FinalizerRunsExactlyOnce(t *testing.T) {
	a := NewArena()
	rc := &releaseCounter{}

	id, _ := a.Create([]byte("x"), rc)
	a.Release(id)
	a.Release(id)

	if rc.count != 1 {
		t.Fatalf("Expected finalizer to run once, ran %d times", rc.count)
	}
}

func TestArena_CloseReleasesEverything(t *testing.T) {
	a := NewArena()
	rc := &releaseCounter{}

	a.Create([]byte("a"), rc)
	a.Create([]byte("b"), rc)
	id3, _ := a.Create([]byte("c"), rc)
	a.Release(id3)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if rc.count != 3 {
		t.Fatalf("Expected 3 finalizer runs, got %d", rc.count)
	}

	st := a.Stats()
	if st.Live() != 0 {
		t.Fatalf("Expected 0 live after Close, got %d", st.Live())
	}

	// Create should fail after Close
	if _, err := a.Create([]byte("d"), nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed, got %v", err)
	}
}

func TestArena_Each(t *testing.T) {
	a := NewArena()

	a.Create([]byte("a"), nil)
	id2, _ := a.Create([]byte("b"), nil)
	a.Create([]byte("c"), nil)
	a.Release(id2)

	var seen []string
	a.Each(func(id ID, data []byte) bool {
		seen = append(seen, string(data))
		return true
	})

	if len(seen) != 2 {
		t.Fatalf("Expected 2 live resources, saw %d", len(seen))
	}
	if a.Len() != 2 {
		t.Fatalf("Expected Len() == 2, got %d", a.Len())
	}
}

func TestID_String(t *testing.T) {
	if got := (ID{}).String(); got != "r0" {
		t.Fatalf("Expected 'r0' for zero ID, got %q", got)
	}
	if got := (ID{Slot: 3, Gen: 2}).String(); got != "r3@2" {
		t.Fatalf("Expected 'r3@2', got %q", got)
	}
}
