package handle

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/kestrelworks/assetkit/engine"
	errs "github.com/kestrelworks/assetkit/errors"
	"github.com/kestrelworks/assetkit/notify"
	"github.com/kestrelworks/assetkit/track"
)

// Load is a disposable handle for one asynchronous asset load. Its future
// settles with the loaded object, fails on a host load failure or when the
// loaded object is not a T, and reports canceled if the handle is released
// while pending.
//
// Every Load must be released exactly once to return the underlying
// resource to the engine's reference-counted pool; Release is idempotent.
// An abandoned handle is detected at garbage collection and logged through
// the track registry.
type Load[T any] struct {
	st *loadState[T]
}

// loadState is separate from the exported handle so the garbage-collection
// cleanup attached to the handle can observe it without keeping the handle
// reachable.
type loadState[T any] struct {
	mu         sync.Mutex
	eng        engine.Engine
	op         *engine.Operation
	completion *notify.Completion[T]
	reg        *track.Registry
	key        string
	asset      T
	tok        track.Token
	released   bool
}

// NewLoad begins an asynchronous load of key through eng.
func NewLoad[T any](eng engine.Engine, key string, opts ...Option) *Load[T] {
	cfg := buildConfig(opts)

	st := &loadState[T]{
		eng:        eng,
		key:        key,
		completion: notify.New[T](),
		reg:        cfg.registry,
	}
	st.tok = st.reg.Add(key, track.KindLoad)

	h := &Load[T]{st: st}
	runtime.AddCleanup(h, leakLoad[T], st)

	if cfg.deferStart {
		eng.OnNextFrame(st.start)
	} else {
		st.start()
	}
	return h
}

func leakLoad[T any](st *loadState[T]) {
	st.mu.Lock()
	released := st.released
	st.mu.Unlock()
	if !released {
		st.reg.Leak(st.tok)
	}
}

// start begins the engine load. Runs either at construction or, for
// deferred handles, on the next frame step.
func (st *loadState[T]) start() {
	st.mu.Lock()
	if st.released {
		// Released during the deferral; the load never starts.
		st.mu.Unlock()
		return
	}
	op, err := st.eng.BeginLoad(st.key)
	if err != nil {
		st.mu.Unlock()
		st.completion.Fail(errs.LoadFailed(st.key, err))
		return
	}
	st.op = op
	st.mu.Unlock()

	op.OnComplete(st.onComplete)
}

func (st *loadState[T]) onComplete(op *engine.Operation) {
	st.mu.Lock()
	if st.released {
		// Late result after release: discard it and return the
		// reference it carried.
		st.mu.Unlock()
		st.eng.Release(op)
		return
	}
	st.mu.Unlock()

	if op.Status() == engine.StatusFailed {
		st.completion.Fail(errs.LoadFailed(st.key, op.Err()))
		return
	}

	result := op.Result()
	asset, ok := result.(T)
	if !ok {
		// The loaded object is the wrong type; the reference is of no
		// use to this handle, return it immediately.
		st.eng.Release(op)
		st.completion.Fail(errs.TypeMismatch(st.key,
			fmt.Sprintf("%T", result), typeName[T]()))
		return
	}

	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		return
	}
	st.asset = asset
	st.mu.Unlock()
	st.completion.Resolve(asset)
}

// Key returns the asset key this handle was created for.
func (h *Load[T]) Key() string {
	return h.st.key
}

// Future returns the handle's completion notifier.
func (h *Load[T]) Future() notify.Future[T] {
	return h.st.completion
}

// Await blocks until the load settles or ctx is done.
func (h *Load[T]) Await(ctx context.Context) (T, error) {
	return h.st.completion.Await(ctx)
}

// Asset returns the loaded object after the future has succeeded. The zero
// value is returned while pending, after failure, and after release.
func (h *Load[T]) Asset() T {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return h.st.asset
}

// Released reports whether the handle has been released.
func (h *Load[T]) Released() bool {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return h.st.released
}

// Release returns the handle's engine reference and clears local state.
// A pending handle settles as canceled before the engine reference goes
// back. Safe to call multiple times.
func (h *Load[T]) Release() error {
	return h.st.release()
}

func (st *loadState[T]) release() error {
	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		return nil
	}
	st.released = true
	op := st.op
	st.op = nil
	var zero T
	st.asset = zero
	st.mu.Unlock()

	// Flip the notifier before touching the engine so a callback racing
	// this release observes a settled completion.
	st.completion.Cancel(errs.Canceled(errs.PhaseLoad, st.key))
	if op != nil {
		st.eng.Release(op)
	}
	st.reg.Release(st.tok)
	return nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
