package scenario

import (
	"fmt"

	"github.com/tessalab/own-runtime/errors"
	"github.com/tessalab/own-runtime/store"
	"github.com/tessalab/own-runtime/trace"
)

// StepResult is the outcome of one executed operation. Err is recorded, not
// fatal: scripts demonstrate ownership errors on purpose.
type StepResult struct {
	Op    Op
	Err   error
	Note  string
	Index int
}

// Runner executes a scenario against a fresh store, one step at a time.
type Runner struct {
	scn      *Scenario
	store    *store.Store
	rec      *trace.Recorder
	bindings map[string]*store.Binding
	scopes   map[string]*store.Scope
	borrows  map[string]func()
	pos      int
}

// NewRunner creates a runner with its own store and trace recorder.
func NewRunner(scn *Scenario) *Runner {
	st := store.New()
	rec := trace.New()
	st.Subscribe(rec)

	return &Runner{
		scn:      scn,
		store:    st,
		rec:      rec,
		bindings: make(map[string]*store.Binding),
		scopes:   make(map[string]*store.Scope),
		borrows:  make(map[string]func()),
	}
}

// Store returns the runner's store, for inspection.
func (r *Runner) Store() *store.Store {
	return r.store
}

// Recorder returns the runner's trace recorder.
func (r *Runner) Recorder() *trace.Recorder {
	return r.rec
}

// Pos returns the index of the next operation to execute.
func (r *Runner) Pos() int {
	return r.pos
}

// Done reports whether every operation has been executed.
func (r *Runner) Done() bool {
	return r.pos >= len(r.scn.Ops)
}

// Step executes the next operation. It returns false when the scenario is
// exhausted.
func (r *Runner) Step() (StepResult, bool) {
	if r.Done() {
		return StepResult{}, false
	}

	op := r.scn.Ops[r.pos]
	res := StepResult{Op: op, Index: r.pos}
	r.pos++

	switch op.Kind {
	case "allocate":
		b, err := r.store.Allocate(op.Binding, []byte(op.Data))
		if err != nil {
			res.Err = err
			break
		}
		r.bindings[op.Binding] = b
		res.Note = fmt.Sprintf("%s owns %s", op.Binding, b.Resource())

	case "move":
		from, ok := r.bindings[op.From]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.From)
			break
		}
		b, err := r.store.Move(from, op.Binding)
		if err != nil {
			res.Err = err
			break
		}
		r.bindings[op.Binding] = b
		res.Note = fmt.Sprintf("%s -> %s (%s)", op.From, op.Binding, b.Resource())

	case "duplicate":
		from, ok := r.bindings[op.From]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.From)
			break
		}
		b, err := r.store.Duplicate(from, op.Binding)
		if err != nil {
			res.Err = err
			break
		}
		r.bindings[op.Binding] = b
		res.Note = fmt.Sprintf("%s copied to %s (%s)", op.From, op.Binding, b.Resource())

	case "access":
		b, ok := r.bindings[op.Binding]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.Binding)
			break
		}
		view, err := r.store.Access(b)
		if err != nil {
			res.Err = err
			break
		}
		res.Note = fmt.Sprintf("%q (len=%d cap=%d)", view.Bytes, view.Len, view.Cap)

	case "append":
		b, ok := r.bindings[op.Binding]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.Binding)
			break
		}
		if err := r.store.Append(b, []byte(op.Data)); err != nil {
			res.Err = err
			break
		}
		res.Note = fmt.Sprintf("appended %d byte(s)", len(op.Data))

	case "borrow":
		b, ok := r.bindings[op.Binding]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.Binding)
			break
		}
		view, done, err := r.store.Borrow(b)
		if err != nil {
			res.Err = err
			break
		}
		r.borrows[op.Binding] = done
		res.Note = fmt.Sprintf("borrowed %q", view.Bytes)

	case "return":
		done, ok := r.borrows[op.Binding]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "borrow", op.Binding)
			break
		}
		done()
		delete(r.borrows, op.Binding)
		res.Note = "borrow returned"

	case "release":
		b, ok := r.bindings[op.Binding]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "binding", op.Binding)
			break
		}
		freed, err := r.store.Release(b)
		if err != nil {
			res.Err = err
			break
		}
		res.Note = fmt.Sprintf("freed=%v", freed)

	case "enter":
		r.scopes[op.Scope] = r.store.EnterScope(op.Scope)
		res.Note = fmt.Sprintf("entered scope %s", op.Scope)

	case "close":
		sc, ok := r.scopes[op.Scope]
		if !ok {
			res.Err = errors.NotFound(errors.PhaseRun, "scope", op.Scope)
			break
		}
		if err := sc.Close(); err != nil {
			res.Err = err
			break
		}
		res.Note = fmt.Sprintf("closed scope %s", op.Scope)

	default:
		// Validate rejects unknown kinds; this is unreachable for loaded
		// scenarios.
		res.Err = errors.InvalidInput(errors.PhaseRun, "unknown op kind "+op.Kind)
	}

	return res, true
}

// Run executes every remaining operation and returns all step results.
func (r *Runner) Run() []StepResult {
	var results []StepResult
	for {
		res, ok := r.Step()
		if !ok {
			break
		}
		results = append(results, res)
	}
	return results
}

// Close releases everything the scenario still owns, then verifies the
// exactly-once release property against the recorded trace.
func (r *Runner) Close() error {
	for name, done := range r.borrows {
		done()
		delete(r.borrows, name)
	}
	if err := r.store.Close(); err != nil {
		return err
	}
	return r.rec.LeakCheck()
}
