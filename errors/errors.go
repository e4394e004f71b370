package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in a request's lifecycle the error occurred
type Phase string

const (
	PhaseLoad        Phase = "load"        // asset loading
	PhaseInstantiate Phase = "instantiate" // spawned-object creation
	PhaseRelease     Phase = "release"     // handle disposal
)

// Kind categorizes the error
type Kind string

const (
	KindLoadFailed       Kind = "load_failed"       // host engine reported non-success
	KindTypeMismatch     Kind = "type_mismatch"     // loaded object is not the expected type
	KindMissingComponent Kind = "missing_component" // spawned instance lacks an expected component
	KindCanceled         Kind = "canceled"          // handle released while pending
	KindAlreadyReleased  Kind = "already_released"  // operation on a released handle
	KindNotFound         Kind = "not_found"         // unknown asset key
	KindInvalidInput     Kind = "invalid_input"     // bad argument from the caller
	KindUnsupported      Kind = "unsupported"       // engine lacks a required capability
)

// Error is the structured error type surfaced through completion notifiers.
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Key      string
	GoType   string
	WantType string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Key != "" {
		b.WriteString(" key ")
		b.WriteString(fmt.Sprintf("%q", e.Key))
	}

	if e.GoType != "" || e.WantType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WantType != "" {
			b.WriteString("got ")
			b.WriteString(e.GoType)
			b.WriteString(", want ")
			b.WriteString(e.WantType)
		} else if e.GoType != "" {
			b.WriteString("got ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("want ")
			b.WriteString(e.WantType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WantType != "" {
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

// Key sets the asset key
func (b *Builder) Key(key string) *Builder {
	b.err.Key = key
	return b
}

// GoType sets the concrete type that was observed
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WantType sets the type that was expected
func (b *Builder) WantType(t string) *Builder {
	b.err.WantType = t
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

// LoadFailed creates a load failure error reported by the host engine.
func LoadFailed(key string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindLoadFailed,
		Key:   key,
		Cause: cause,
	}
}

// TypeMismatch creates a type mismatch error for a loaded asset.
func TypeMismatch(key, goType, wantType string) *Error {
	return &Error{
		Phase:    PhaseLoad,
		Kind:     KindTypeMismatch,
		Key:      key,
		GoType:   goType,
		WantType: wantType,
	}
}

// MissingComponent creates an instantiation failure for a spawned instance
// that lacks an expected component.
func MissingComponent(key, wantType string) *Error {
	return &Error{
		Phase:    PhaseInstantiate,
		Kind:     KindMissingComponent,
		Key:      key,
		WantType: wantType,
		Detail:   "spawned instance has no such component",
	}
}

// Canceled creates a cancellation error for a handle released while pending.
func Canceled(phase Phase, key string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCanceled,
		Key:    key,
		Detail: "handle released before completion",
	}
}

// NotFound creates a not-found error for an unknown asset key.
func NotFound(key string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Key:    key,
		Detail: "no asset with this key",
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

// Unsupported creates an unsupported capability error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Instantiation wraps an engine instantiation failure.
func Instantiation(key string, cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindLoadFailed,
		Key:    key,
		Detail: "instantiate asset",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with phase and kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
