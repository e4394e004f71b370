package handle

import (
	"github.com/kestrelworks/assetkit/engine"
	"github.com/kestrelworks/assetkit/track"
)

type config struct {
	parent     engine.Instance
	position   engine.Vec3
	registry   *track.Registry
	deferStart bool
	forceSync  bool
}

// Option configures a handle at construction.
type Option func(*config)

// DeferStart delays the load by one engine frame so collaborating systems
// can interpose work (a loading indicator, say) before heavy work begins.
// Releasing the handle during the deferral means the load never starts.
func DeferStart() Option {
	return func(c *config) { c.deferStart = true }
}

// Under parents the spawned instance beneath an existing one.
func Under(parent engine.Instance) Option {
	return func(c *config) { c.parent = parent }
}

// At sets the spawn position.
func At(position engine.Vec3) Option {
	return func(c *config) { c.position = position }
}

// SyncInstantiate forces the synchronous instantiation path even when the
// engine's background path is available.
func SyncInstantiate() Option {
	return func(c *config) { c.forceSync = true }
}

// WithRegistry overrides the handle registry. Defaults to track.Default.
func WithRegistry(r *track.Registry) Option {
	return func(c *config) { c.registry = r }
}

func buildConfig(opts []Option) config {
	cfg := config{registry: track.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
