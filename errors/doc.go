// Package errors provides structured error types for the own-runtime library.
//
// Errors are categorized by Phase (which operation the error occurred in) and
// Kind (error category). The Error type includes the binding name and resource
// identity involved, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMove, errors.KindUseAfterMove).
//		Binding("greeting").
//		Detail("binding was moved out before this use").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UseAfterMove(errors.PhaseAccess, "greeting")
//	err := errors.OutstandingBorrow(errors.PhaseRelease, "greeting", 2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
