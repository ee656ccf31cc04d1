// Package ownruntime provides a runtime-enforced single-owner value model.
//
// This library tracks which binding currently owns a heap-allocated resource,
// invalidates prior bindings on ownership transfer, and releases each resource
// exactly once when its owner's scope ends. It trades the compile-time
// guarantees of a borrow checker for explicit runtime ownership tags, which
// makes the discipline portable to any host program at the cost of a validity
// check per access.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	own-runtime/         Root package with the Releaser destructor contract
//	├── store/           High-level API: Store, Binding, Scope, Scalar
//	├── heap/            Slot-array backend with generation-tagged handles
//	├── trace/           Ordered lifecycle event recorder for verification
//	├── scenario/        TOML-scripted ownership scenarios
//	├── errors/          Structured error types for debugging
//	└── cmd/ownrun/      CLI runner and interactive inspector
//
// # Quick Start
//
// Allocate a resource, move it, and observe the use-after-move error:
//
//	st := store.New()
//	defer st.Close()
//
//	b1, err := st.Allocate("greeting", []byte("hello"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b2, err := st.Move(b1, "owner2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = st.Access(b1) // fails: b1 was moved out
//	fmt.Println(err)       // [access] use_after_move: binding "greeting" ...
//
//	view, _ := st.Access(b2)
//	fmt.Println(string(view.Bytes)) // "hello"
//
// # Ownership Rules
//
// The model enforces three invariants at runtime:
//
//   - At most one valid binding owns a given resource at any time.
//   - Moving ownership atomically invalidates the source binding; any later
//     use of it fails with a use_after_move error rather than misbehaving.
//   - Every resource is released exactly once: by an explicit Release, or by
//     its scope closing, whichever comes first. Release on an already
//     invalid binding is an idempotent no-op.
//
// Duplicate is the explicit deep-copy escape hatch: it allocates a new,
// independent resource and leaves the source binding valid.
//
// # Scopes
//
// Scopes are nestable lifetime regions. Closing a scope releases every
// still-valid binding created inside it, in reverse creation order:
//
//	sc := st.EnterScope("block")
//	a, _ := st.Allocate("a", []byte("first"))
//	b, _ := st.Allocate("b", []byte("second"))
//	sc.Close() // releases b, then a
//
// # Scalars
//
// Fixed-size scalar values have no heap resource and bypass the model
// entirely: assignment copies, and both the original and the copy remain
// valid. Use store.Scalar for values that should behave this way.
//
// # Thread Safety
//
// A Store models a single logical thread of execution. The heap backend is
// internally synchronized so a Store may be inspected concurrently (the
// interactive CLI does this), but ordering guarantees only hold for
// single-threaded use.
package ownruntime
