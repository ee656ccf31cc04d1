// Package trace records ownership lifecycle events in order.
//
// A Recorder subscribes to a store and keeps the full event stream, which
// is enough to verify the model's testable properties: every resource
// released exactly once, scope exits releasing in reverse creation order,
// and no silent double releases.
package trace

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tessalab/own-runtime/heap"
	"github.com/tessalab/own-runtime/store"
)

// Recorder is a store.Observer that keeps every event it sees.
// The zero value is ready to use.
type Recorder struct {
	mu     sync.Mutex
	events []store.Event
}

// New creates a Recorder.
func New() *Recorder {
	return &Recorder{}
}

// OnOwnershipEvent implements store.Observer.
func (r *Recorder) OnOwnershipEvent(e store.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded stream.
func (r *Recorder) Events() []store.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ReleaseOrder returns the binding names of release events, in order.
func (r *Recorder) ReleaseOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, e := range r.events {
		if e.Type == store.EventReleased {
			names = append(names, e.Binding)
		}
	}
	return names
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// LeakCheck verifies the exactly-once release property against the
// recorded stream: every resource that was allocated or duplicated must
// have exactly one release event. It returns nil when the property holds.
func (r *Recorder) LeakCheck() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make(map[heap.ID]string)
	releases := make(map[heap.ID]int)
	for _, e := range r.events {
		switch e.Type {
		case store.EventAllocated, store.EventDuplicated:
			created[e.Resource] = e.Binding
		case store.EventReleased:
			releases[e.Resource]++
		}
	}

	var problems []string
	for id, binding := range created {
		switch n := releases[id]; {
		case n == 0:
			problems = append(problems, fmt.Sprintf("%s (binding %q) leaked", id, binding))
		case n > 1:
			problems = append(problems, fmt.Sprintf("%s (binding %q) released %d times", id, binding, n))
		}
	}
	for id, n := range releases {
		if _, ok := created[id]; !ok {
			problems = append(problems, fmt.Sprintf("%s released %d time(s) but never allocated", id, n))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("lifetime violations: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Format renders the stream as one line per event, for logs and the CLI.
func (r *Recorder) Format() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for i, e := range r.events {
		fmt.Fprintf(&b, "%3d %-15s", i, e.Type)
		switch e.Type {
		case store.EventMoved, store.EventDuplicated:
			fmt.Fprintf(&b, " %s -> %s (%s)", e.From, e.Binding, e.Resource)
		case store.EventScopeEntered, store.EventScopeClosed:
			fmt.Fprintf(&b, " %s", e.Scope)
		default:
			fmt.Fprintf(&b, " %s (%s)", e.Binding, e.Resource)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
