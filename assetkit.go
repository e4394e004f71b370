package assetkit

import (
	"go.uber.org/multierr"

	"github.com/kestrelworks/assetkit/engine"
	"github.com/kestrelworks/assetkit/handle"
)

// Option configures a handle at construction. See the handle package for
// the available options.
type Option = handle.Option

// DeferStart delays the load by one engine frame; see handle.DeferStart.
func DeferStart() Option { return handle.DeferStart() }

// Under parents the spawned instance beneath an existing one.
func Under(parent engine.Instance) Option { return handle.Under(parent) }

// At sets the spawn position.
func At(position engine.Vec3) Option { return handle.At(position) }

// SyncInstantiate forces the synchronous instantiation path.
func SyncInstantiate() Option { return handle.SyncInstantiate() }

// Load begins an asynchronous load of key and returns its handle.
//
//	h := assetkit.Load[*engine.Text](eng, "ui/banner")
//	text, err := h.Await(ctx)
//	defer h.Release()
func Load[T any](eng engine.Engine, key string, opts ...Option) *handle.Load[T] {
	return handle.NewLoad[T](eng, key, opts...)
}

// Instantiate begins loading key and, once loaded, spawns an instance that
// must carry a component assignable to C.
//
//	h := assetkit.Instantiate[*engine.Collider](eng, "props/crate",
//		assetkit.At(engine.Vec3{X: 4}))
func Instantiate[C any](eng engine.Engine, key string, opts ...Option) *handle.Spawn[C] {
	return handle.NewSpawn[C](eng, key, opts...)
}

// Releaser is any disposable handle.
type Releaser interface {
	Release() error
}

// Group releases a set of handles together, in the order they were added.
// Useful for tearing down everything a scene or loading screen acquired.
type Group struct {
	handles []Releaser
}

// Add appends handles to the group.
func (g *Group) Add(handles ...Releaser) {
	g.handles = append(g.handles, handles...)
}

// Len returns the number of handles in the group.
func (g *Group) Len() int {
	return len(g.handles)
}

// Release releases every handle, combining any errors. The group is empty
// afterwards and can be reused.
func (g *Group) Release() error {
	var err error
	for _, h := range g.handles {
		err = multierr.Append(err, h.Release())
	}
	g.handles = nil
	return err
}
