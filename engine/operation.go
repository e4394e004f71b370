package engine

import "sync"

// Status describes an operation's progress as reported by the host engine.
type Status uint8

const (
	StatusInProgress Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Operation is the engine-owned handle for one in-flight request. Engines
// create operations with NewOperation and settle them with Complete on a
// frame step. Consumers observe status and register completion callbacks;
// they must return the operation to the engine with Engine.Release when done
// with it.
type Operation struct {
	mu        sync.Mutex
	key       string
	status    Status
	result    any
	err       error
	callbacks []func(*Operation)
	released  bool
}

// NewOperation creates an in-progress operation for key. Intended for Engine
// implementations and adapters to real engines.
func NewOperation(key string) *Operation {
	return &Operation{key: key}
}

// Key returns the asset key this operation was started for.
func (op *Operation) Key() string {
	return op.key
}

// Status returns the operation's current status.
func (op *Operation) Status() Status {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.status
}

// Result returns the loaded value once Status is StatusSucceeded.
func (op *Operation) Result() any {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.result
}

// Err returns the failure once Status is StatusFailed.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.err
}

// OnComplete registers fn to run when the operation completes. If the
// operation has already completed, fn runs immediately. A released operation
// never completes, so callbacks registered on one are dropped.
func (op *Operation) OnComplete(fn func(*Operation)) {
	op.mu.Lock()
	if op.status != StatusInProgress {
		op.mu.Unlock()
		fn(op)
		return
	}
	if op.released {
		op.mu.Unlock()
		return
	}
	op.callbacks = append(op.callbacks, fn)
	op.mu.Unlock()
}

// Complete settles the operation. err nil means success. Completing an
// already-completed or released operation is a no-op; Complete reports
// whether this call settled it.
func (op *Operation) Complete(result any, err error) bool {
	op.mu.Lock()
	if op.status != StatusInProgress || op.released {
		op.mu.Unlock()
		return false
	}
	if err != nil {
		op.status = StatusFailed
		op.err = err
	} else {
		op.status = StatusSucceeded
		op.result = result
	}
	callbacks := op.callbacks
	op.callbacks = nil
	op.mu.Unlock()

	for _, fn := range callbacks {
		fn(op)
	}
	return true
}

// MarkReleased flags the operation so a pending completion is discarded.
// Intended for Engine implementations; callers use Engine.Release.
// Returns false if already flagged.
func (op *Operation) MarkReleased() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.released {
		return false
	}
	op.released = true
	op.callbacks = nil
	return true
}

// Released reports whether the operation has been returned to the engine.
func (op *Operation) Released() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.released
}
