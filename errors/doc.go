// Package errors provides structured error types for the assetkit library.
//
// Errors are categorized by Phase (where in a request's lifecycle the error
// occurred) and Kind (error category). The Error type includes the asset key
// and Go type names involved, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
//		Key("ui/banner").
//		GoType("*engine.Blob").
//		WantType("*engine.Text").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LoadFailed("ui/banner", cause)
//	err := errors.MissingComponent("props/crate", "Collider")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
