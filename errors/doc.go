// Package errors provides structured error types for the browser-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes a field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDOM, errors.KindCycle).
//		Path("appendChild").
//		Detail("node cannot be appended to its own descendant").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseABI, "value", h)
//	err := errors.OutOfBounds(errors.PhaseABI, "string", ptr, length)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
