package engine

import (
	"context"
	"time"
)

// Vec3 is a world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// InstantiateOptions places a spawned instance in the scene.
type InstantiateOptions struct {
	Parent   Instance
	Position Vec3
}

// Instance is a spawned scene object owned by the host engine.
type Instance interface {
	// Name returns the instance's scene name.
	Name() string

	// Component returns the attached component with the given type name.
	Component(name string) (any, bool)

	// Components lists the attached component type names.
	Components() []string
}

// Engine is the host engine's asset-loading and instantiation boundary.
// Implementations own all scheduling: loads complete on the engine's frame
// step, never on the caller's goroutine.
type Engine interface {
	// BeginLoad starts an asynchronous load for key and returns the
	// engine-owned operation handle. The operation completes on a later
	// frame step, with a failure if the key is unknown or the engine
	// reports non-success.
	BeginLoad(key string) (*Operation, error)

	// Release returns an operation's reference to the engine's pool.
	// Releasing a pending operation abandons it: it will never complete.
	// Safe to call more than once.
	Release(op *Operation)

	// Instantiate spawns an instance of a loaded prefab-like asset.
	Instantiate(asset any, opts InstantiateOptions) (Instance, error)

	// Destroy removes a spawned instance from the scene.
	Destroy(inst Instance) error

	// OnNextFrame schedules fn to run at the start of the next frame step.
	OnNextFrame(fn func())

	// Version reports the engine version as a semver string.
	Version() string
}

// AsyncInstantiator is implemented by engines that can spawn instances on a
// background path instead of blocking a frame. The operation's result is an
// Instance. Callers should gate use of this path on the engine version; see
// SupportsBackgroundInstantiate.
type AsyncInstantiator interface {
	InstantiateAsync(asset any, opts InstantiateOptions) (*Operation, error)
}

// Pumper is implemented by engines whose frame stepping the embedder drives.
type Pumper interface {
	// Step advances the engine by one frame.
	Step()

	// Pump steps the engine at the given interval until ctx is done.
	Pump(ctx context.Context, every time.Duration)
}
