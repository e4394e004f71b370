// Package assetkit wraps a host game engine's asynchronous asset loading
// in disposable, future-style handles.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	assetkit/            Root package with facade constructors and Group
//	├── engine/          Host engine boundary and the Sim reference engine
//	├── handle/          Load and Spawn handles (the one-shot state machines)
//	├── notify/          Completion notifier (promise-style futures)
//	├── track/           Live-handle registry and leak diagnostics
//	└── errors/          Structured error taxonomy
//
// # Quick Start
//
// Load an asset and wait for it:
//
//	eng := engine.NewSim()
//	eng.AddText("ui/banner", "welcome")
//	go eng.Pump(ctx, 16*time.Millisecond)
//
//	h := assetkit.Load[*engine.Text](eng, "ui/banner")
//	defer h.Release()
//
//	text, err := h.Await(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(text.Body)
//
// Spawn an instance of a prefab and grab one of its components:
//
//	h := assetkit.Instantiate[*engine.Collider](eng, "props/crate",
//	    assetkit.At(engine.Vec3{X: 4}))
//	defer h.Release()
//
//	spawned, err := h.Await(ctx)
//
// # Ownership
//
// Every handle owns one engine reference (and, for Instantiate, the
// spawned instance) and must be released exactly once; Release is
// idempotent. Releasing a pending handle cancels it: the future settles as
// canceled before the engine is touched, and a late engine result is
// discarded. Handles that are garbage-collected without release are logged
// as leaks through the track package.
//
// # Concurrency
//
// The model is cooperative and driven by the host engine's frame steps:
// loads complete when the engine steps, never on the caller's goroutine.
// The library adds no scheduler and no timeouts. Handles are safe to
// release from any goroutine.
package assetkit
