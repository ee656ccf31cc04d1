package scenario

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/tessalab/own-runtime/errors"
)

const moveScript = `
name = "move then use"

[[op]]
kind = "enter"
scope = "block"

[[op]]
kind = "allocate"
binding = "b1"
data = "hello"

[[op]]
kind = "move"
from = "b1"
binding = "b2"

[[op]]
kind = "access"
binding = "b1"

[[op]]
kind = "access"
binding = "b2"

[[op]]
kind = "close"
scope = "block"
`

func TestParse(t *testing.T) {
	scn, err := Parse(moveScript)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if scn.Name != "move then use" {
		t.Fatalf("Expected name 'move then use', got %q", scn.Name)
	}
	if len(scn.Ops) != 6 {
		t.Fatalf("Expected 6 ops, got %d", len(scn.Ops))
	}
	if scn.Ops[2].Kind != "move" || scn.Ops[2].From != "b1" || scn.Ops[2].Binding != "b2" {
		t.Fatalf("Op 2 decoded wrong: %+v", scn.Ops[2])
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	_, err := Parse(`
[[op]]
kind = "teleport"
binding = "x"
`)
	if err == nil {
		t.Fatal("Expected validation error for unknown kind")
	}
	if !strings.Contains(err.Error(), "teleport") {
		t.Fatalf("Error should name the bad kind: %v", err)
	}
}

func TestValidate_DuplicateBindingName(t *testing.T) {
	_, err := Parse(`
[[op]]
kind = "allocate"
binding = "x"
data = "1"

[[op]]
kind = "allocate"
binding = "x"
data = "2"
`)
	if err == nil {
		t.Fatal("Expected validation error for reused binding name")
	}
	if !strings.Contains(err.Error(), `"x"`) || !strings.Contains(err.Error(), "already defined") {
		t.Fatalf("Error should name the duplicate binding: %v", err)
	}

	// A move target clashing with an earlier allocate is rejected too.
	_, err = Parse(`
[[op]]
kind = "allocate"
binding = "a"
data = "1"

[[op]]
kind = "allocate"
binding = "b"
data = "2"

[[op]]
kind = "move"
from = "a"
binding = "b"
`)
	if err == nil {
		t.Fatal("Expected validation error for move target reusing a name")
	}
}

func TestValidate_DuplicateScopeLabel(t *testing.T) {
	_, err := Parse(`
[[op]]
kind = "enter"
scope = "s"

[[op]]
kind = "close"
scope = "s"

[[op]]
kind = "enter"
scope = "s"
`)
	if err == nil {
		t.Fatal("Expected validation error for reused scope label")
	}
	if !strings.Contains(err.Error(), `"s"`) || !strings.Contains(err.Error(), "already entered") {
		t.Fatalf("Error should name the duplicate scope: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []string{
		`[[op]]
kind = "allocate"`,
		`[[op]]
kind = "move"
binding = "b2"`,
		`[[op]]
kind = "enter"`,
	}
	for _, src := range cases {
		if _, err := Parse(src); err == nil {
			t.Fatalf("Expected validation error for:\n%s", src)
		}
	}
}

func TestRunner_MoveScenario(t *testing.T) {
	scn, err := Parse(moveScript)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	r := NewRunner(scn)
	results := r.Run()

	if len(results) != 6 {
		t.Fatalf("Expected 6 results, got %d", len(results))
	}

	// Accessing the moved-out binding fails with use_after_move.
	var oe *errors.Error
	if results[3].Err == nil || !stderrors.As(results[3].Err, &oe) || oe.Kind != errors.KindUseAfterMove {
		t.Fatalf("Step 3 should fail with use_after_move, got %v", results[3].Err)
	}

	// Access via the new owner sees the original content.
	if results[4].Err != nil {
		t.Fatalf("Step 4 failed: %v", results[4].Err)
	}
	if !strings.Contains(results[4].Note, "hello") {
		t.Fatalf("Step 4 note should show content, got %q", results[4].Note)
	}

	// Scope close released the resource exactly once.
	if err := r.Close(); err != nil {
		t.Fatalf("Close reported lifetime violation: %v", err)
	}
	st := r.Store().Arena().Stats()
	if st.Allocated != 1 || st.Released != 1 {
		t.Fatalf("Expected counters 1/1, got %d/%d", st.Allocated, st.Released)
	}
}

func TestRunner_BorrowScript(t *testing.T) {
	scn, err := Parse(`
[[op]]
kind = "allocate"
binding = "buf"
data = "data"

[[op]]
kind = "borrow"
binding = "buf"

[[op]]
kind = "release"
binding = "buf"

[[op]]
kind = "return"
binding = "buf"

[[op]]
kind = "release"
binding = "buf"
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	r := NewRunner(scn)
	results := r.Run()

	// Release while borrowed fails.
	var oe *errors.Error
	if results[2].Err == nil || !stderrors.As(results[2].Err, &oe) || oe.Kind != errors.KindOutstandingBorrow {
		t.Fatalf("Step 2 should fail with outstanding_borrow, got %v", results[2].Err)
	}

	// Release after returning the borrow succeeds.
	if results[4].Err != nil {
		t.Fatalf("Step 4 failed: %v", results[4].Err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close reported lifetime violation: %v", err)
	}
}

func TestRunner_StepByStep(t *testing.T) {
	scn, _ := Parse(`
[[op]]
kind = "allocate"
binding = "a"
data = "x"

[[op]]
kind = "release"
binding = "a"
`)

	r := NewRunner(scn)
	if r.Done() {
		t.Fatal("Runner should not start done")
	}

	res, ok := r.Step()
	if !ok || res.Index != 0 || res.Err != nil {
		t.Fatalf("First step wrong: %+v ok=%v", res, ok)
	}
	if r.Pos() != 1 {
		t.Fatalf("Expected pos 1, got %d", r.Pos())
	}

	res, ok = r.Step()
	if !ok || res.Err != nil {
		t.Fatalf("Second step wrong: %+v ok=%v", res, ok)
	}

	if _, ok := r.Step(); ok {
		t.Fatal("Step past the end should report done")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
