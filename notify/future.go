package notify

import "context"

// Future is the read-only side of a Completion. Handles hand this to their
// observers so only the owner can settle the underlying completion.
type Future[T any] interface {
	// State returns the current lifecycle state.
	State() State

	// Done returns a channel closed once the completion settles.
	Done() <-chan struct{}

	// Result returns the settled value and error.
	Result() (T, error)

	// Err returns the settled error, or nil while pending or on success.
	Err() error

	// Await blocks until the completion settles or ctx is done.
	Await(ctx context.Context) (T, error)

	// OnSettled registers a callback to run when the completion settles.
	OnSettled(fn func(T, error))
}

var _ Future[int] = (*Completion[int])(nil)
