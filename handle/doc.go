// Package handle implements the disposable request handles at the heart of
// assetkit.
//
// A Load wraps one asynchronous "load a resource by key" request; a Spawn
// additionally instantiates the loaded prefab and owns the spawned
// instance. Both expose a read-only completion notifier (notify.Future)
// that settles exactly once, and both must be released exactly once.
// Release is idempotent, clears every owned reference, and returns the
// engine's resources.
//
//	h := handle.NewLoad[*engine.Text](eng, "ui/banner")
//	text, err := h.Await(ctx)
//	...
//	h.Release()
//
// Releasing a handle while its request is pending cancels it: the notifier
// settles as canceled before the engine is touched, so a racing engine
// callback discards its late result. A handle that is garbage-collected
// without release is reported through the track registry as a leak.
package handle
