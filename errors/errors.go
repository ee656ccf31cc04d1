package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation the error occurred in
type Phase string

const (
	PhaseAllocate  Phase = "allocate"  // resource allocation
	PhaseMove      Phase = "move"      // ownership transfer
	PhaseDuplicate Phase = "duplicate" // deep copy
	PhaseAccess    Phase = "access"    // read view
	PhaseBorrow    Phase = "borrow"    // temporary read access
	PhaseRelease   Phase = "release"   // resource release
	PhaseScope     Phase = "scope"     // scope entry/exit
	PhaseParse     Phase = "parse"     // scenario parsing
	PhaseRun       Phase = "run"       // scenario execution
)

// Kind categorizes the error
type Kind string

const (
	KindUseAfterMove      Kind = "use_after_move"
	KindOutstandingBorrow Kind = "outstanding_borrow"
	KindArenaClosed       Kind = "arena_closed"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidData       Kind = "invalid_data"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Binding  string
	Resource string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Binding != "" {
		b.WriteString(": binding ")
		b.WriteString(fmt.Sprintf("%q", e.Binding))
	}

	if e.Resource != "" {
		if e.Binding != "" {
			b.WriteString(" (resource ")
		} else {
			b.WriteString(": resource ")
		}
		b.WriteString(e.Resource)
		if e.Binding != "" {
			b.WriteByte(')')
		}
	}

	if e.Detail != "" {
		if e.Binding != "" || e.Resource != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Binding sets the binding name
func (b *Builder) Binding(name string) *Builder {
	b.err.Binding = name
	return b
}

// Resource sets the resource identity
func (b *Builder) Resource(id string) *Builder {
	b.err.Resource = id
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UseAfterMove creates a use-after-move error for an invalidated binding
func UseAfterMove(phase Phase, binding string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUseAfterMove,
		Binding: binding,
		Detail:  "binding no longer owns a live resource",
	}
}

// OutstandingBorrow creates an error for operations blocked by live borrows
func OutstandingBorrow(phase Phase, binding string, count int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutstandingBorrow,
		Binding: binding,
		Detail:  fmt.Sprintf("%d borrow(s) still outstanding", count),
	}
}

// ArenaClosed creates an error for operations on a closed arena
func ArenaClosed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArenaClosed,
		Detail: "backing arena is closed",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// ParseFailed creates a scenario parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
