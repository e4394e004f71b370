// Package engine defines the host engine boundary for assetkit.
//
// The Engine interface is the seam to a real game engine's asset-loading
// and scene-instantiation runtime: an opaque external collaborator that
// owns all scheduling. Requests return an engine-owned Operation that
// completes on a later frame step; callers return operations to the engine
// with Release.
//
// # Cooperative model
//
// Nothing here spawns goroutines on the caller's behalf. Loads complete
// when the engine steps a frame, and OnNextFrame callbacks run at the start
// of the following step. Engines whose stepping the embedder drives
// implement Pumper.
//
// # Sim
//
// Sim is the in-memory reference engine used by tests, examples, and the
// loadsim CLI. It serves assets from a catalog (text, blob, prefab, or
// deliberately broken entries), materializes content once per key, and
// tracks per-key reference counts:
//
//	eng := engine.NewSim(engine.WithLatency(2))
//	eng.AddText("ui/banner", "welcome")
//
//	op, _ := eng.BeginLoad("ui/banner")
//	eng.StepN(2) // op completes here
//	eng.Release(op)
//
// # Background instantiation
//
// Engines may implement AsyncInstantiator. The path is version-gated:
// callers should consult SupportsBackgroundInstantiate, which requires the
// engine's semver Version to be at least BackgroundInstantiateMin.
package engine
