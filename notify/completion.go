package notify

import (
	"context"
	"sync"
)

// State describes where a completion is in its lifecycle.
type State uint8

const (
	Pending State = iota
	Succeeded
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// Settled reports whether the state is terminal.
func (s State) Settled() bool {
	return s != Pending
}

// Completion is a one-shot notifier for an asynchronous request.
// It settles exactly once: the first of Resolve, Fail, or Cancel wins and
// every later transition is a no-op. Zero value is not usable; call New.
type Completion[T any] struct {
	mu        sync.Mutex
	state     State
	result    T
	err       error
	done      chan struct{}
	callbacks []func(T, error)
}

// New creates a pending completion.
func New[T any]() *Completion[T] {
	return &Completion[T]{
		done: make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Completion[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed once the completion settles.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Result returns the settled value and error. Before the completion settles
// it returns the zero value and nil; check State or wait on Done first.
func (c *Completion[T]) Result() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.err
}

// Err returns the settled error, or nil while pending or on success.
func (c *Completion[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Await blocks until the completion settles or ctx is done.
func (c *Completion[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnSettled registers fn to run when the completion settles. If it has
// already settled, fn runs immediately on the calling goroutine. Callbacks
// registered while pending run on the goroutine that settles the completion,
// in registration order.
func (c *Completion[T]) OnSettled(fn func(T, error)) {
	c.mu.Lock()
	if c.state.Settled() {
		result, err := c.result, c.err
		c.mu.Unlock()
		fn(result, err)
		return
	}
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}

// Resolve settles the completion with a value. Returns false if it had
// already settled.
func (c *Completion[T]) Resolve(value T) bool {
	return c.settle(Succeeded, value, nil)
}

// Fail settles the completion with an error. Returns false if it had
// already settled.
func (c *Completion[T]) Fail(err error) bool {
	var zero T
	return c.settle(Failed, zero, err)
}

// Cancel settles the completion as canceled with the given error. Returns
// false if it had already settled.
func (c *Completion[T]) Cancel(err error) bool {
	var zero T
	return c.settle(Canceled, zero, err)
}

func (c *Completion[T]) settle(state State, value T, err error) bool {
	c.mu.Lock()
	if c.state.Settled() {
		c.mu.Unlock()
		return false
	}
	c.state = state
	c.result = value
	c.err = err
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(value, err)
	}
	return true
}
