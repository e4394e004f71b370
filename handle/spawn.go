package handle

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"

	"github.com/kestrelworks/assetkit/engine"
	errs "github.com/kestrelworks/assetkit/errors"
	"github.com/kestrelworks/assetkit/notify"
	"github.com/kestrelworks/assetkit/track"
)

// Spawned is the result of a successful Spawn: the scene instance plus the
// attached component the handle was asked for.
type Spawned[C any] struct {
	Instance  engine.Instance
	Component C
}

// Spawn is a disposable handle that loads a prefab-like asset by key and
// instantiates it. Its future settles with the spawned instance and its C
// component; it fails if the load fails, if the loaded asset is not a
// prefab, or if the spawned instance has no component assignable to C (the
// instance is destroyed immediately in that case).
//
// Release destroys any spawned instance and then returns the load
// reference, in that order, exactly once.
type Spawn[C any] struct {
	st *spawnState[C]
}

type spawnState[C any] struct {
	mu         sync.Mutex
	eng        engine.Engine
	loadOp     *engine.Operation
	spawnOp    *engine.Operation
	inst       engine.Instance
	completion *notify.Completion[Spawned[C]]
	reg        *track.Registry
	key        string
	opts       engine.InstantiateOptions
	tok        track.Token
	forceSync  bool
	released   bool
}

// NewSpawn begins loading key and, once loaded, instantiates it. The
// background instantiation path is used when the engine version supports
// it; see engine.SupportsBackgroundInstantiate.
func NewSpawn[C any](eng engine.Engine, key string, opts ...Option) *Spawn[C] {
	cfg := buildConfig(opts)

	st := &spawnState[C]{
		eng:        eng,
		key:        key,
		completion: notify.New[Spawned[C]](),
		reg:        cfg.registry,
		opts: engine.InstantiateOptions{
			Parent:   cfg.parent,
			Position: cfg.position,
		},
		forceSync: cfg.forceSync,
	}
	st.tok = st.reg.Add(key, track.KindSpawn)

	h := &Spawn[C]{st: st}
	runtime.AddCleanup(h, leakSpawn[C], st)

	if cfg.deferStart {
		eng.OnNextFrame(st.start)
	} else {
		st.start()
	}
	return h
}

func leakSpawn[C any](st *spawnState[C]) {
	st.mu.Lock()
	released := st.released
	st.mu.Unlock()
	if !released {
		st.reg.Leak(st.tok)
	}
}

func (st *spawnState[C]) start() {
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
	st.loadOp = op
	st.mu.Unlock()

	op.OnComplete(st.onLoaded)
}

func (st *spawnState[C]) onLoaded(op *engine.Operation) {
	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		st.eng.Release(op)
		return
	}
	st.mu.Unlock()

	if op.Status() == engine.StatusFailed {
		st.completion.Fail(errs.LoadFailed(st.key, op.Err()))
		return
	}

	asset := op.Result()
	if _, ok := asset.(*engine.Prefab); !ok {
		st.eng.Release(op)
		st.completion.Fail(errs.TypeMismatch(st.key,
			fmt.Sprintf("%T", asset), "*engine.Prefab"))
		return
	}

	if !st.forceSync && engine.SupportsBackgroundInstantiate(st.eng) {
		st.instantiateAsync(asset)
		return
	}

	inst, err := st.eng.Instantiate(asset, st.opts)
	if err != nil {
		st.completion.Fail(errs.Instantiation(st.key, err))
		return
	}
	st.adopt(inst)
}

func (st *spawnState[C]) instantiateAsync(asset any) {
	ai := st.eng.(engine.AsyncInstantiator)
	spawnOp, err := ai.InstantiateAsync(asset, st.opts)
	if err != nil {
		st.completion.Fail(errs.Instantiation(st.key, err))
		return
	}

	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		st.eng.Release(spawnOp)
		return
	}
	st.spawnOp = spawnOp
	st.mu.Unlock()

	spawnOp.OnComplete(func(op *engine.Operation) {
		st.mu.Lock()
		if st.released {
			st.mu.Unlock()
			if inst, ok := op.Result().(engine.Instance); ok {
				_ = st.eng.Destroy(inst)
			}
			st.eng.Release(op)
			return
		}
		st.mu.Unlock()

		if op.Status() == engine.StatusFailed {
			st.completion.Fail(errs.Instantiation(st.key, op.Err()))
			return
		}
		st.adopt(op.Result().(engine.Instance))
	})
}

// adopt takes ownership of a freshly spawned instance, verifying the
// expected component before resolving the future.
func (st *spawnState[C]) adopt(inst engine.Instance) {
	component, ok := findComponent[C](inst)
	if !ok {
		// The instance is useless without the component; it must not
		// outlive this check.
		_ = st.eng.Destroy(inst)
		st.completion.Fail(errs.MissingComponent(st.key, typeName[C]()))
		return
	}

	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		_ = st.eng.Destroy(inst)
		return
	}
	st.inst = inst
	st.mu.Unlock()

	st.completion.Resolve(Spawned[C]{Instance: inst, Component: component})
}

func findComponent[C any](inst engine.Instance) (C, bool) {
	for _, name := range inst.Components() {
		if v, ok := inst.Component(name); ok {
			if c, ok := v.(C); ok {
				return c, true
			}
		}
	}
	var zero C
	return zero, false
}

// Key returns the asset key this handle was created for.
func (h *Spawn[C]) Key() string {
	return h.st.key
}

// Future returns the handle's completion notifier.
func (h *Spawn[C]) Future() notify.Future[Spawned[C]] {
	return h.st.completion
}

// Await blocks until the spawn settles or ctx is done.
func (h *Spawn[C]) Await(ctx context.Context) (Spawned[C], error) {
	return h.st.completion.Await(ctx)
}

// Instance returns the spawned instance after the future has succeeded,
// or nil.
func (h *Spawn[C]) Instance() engine.Instance {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return h.st.inst
}

// Released reports whether the handle has been released.
func (h *Spawn[C]) Released() bool {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return h.st.released
}

// Release destroys the spawned instance, if any, then returns the load
// reference, in that order. A pending handle settles as canceled. Safe to
// call multiple times.
func (h *Spawn[C]) Release() error {
	return h.st.release()
}

func (st *spawnState[C]) release() error {
	st.mu.Lock()
	if st.released {
		st.mu.Unlock()
		return nil
	}
	st.released = true
	inst := st.inst
	loadOp := st.loadOp
	spawnOp := st.spawnOp
	st.inst = nil
	st.loadOp = nil
	st.spawnOp = nil
	st.mu.Unlock()

	st.completion.Cancel(errs.Canceled(errs.PhaseInstantiate, st.key))

	var err error
	if inst != nil {
		err = multierr.Append(err, st.eng.Destroy(inst))
	}
	if spawnOp != nil {
		st.eng.Release(spawnOp)
	}
	if loadOp != nil {
		st.eng.Release(loadOp)
	}
	st.reg.Release(st.tok)
	return err
}
