// Package track maintains the registry of live asset handles.
//
// Every handle registers itself on creation and deregisters on release.
// Observers can subscribe to lifecycle events (Created, Released, Leaked).
// A Leaked event means a handle was garbage-collected without an explicit
// release; the LeakReporter logs a best-effort diagnostic for each one to
// aid leak detection.
//
//	reg := track.NewRegistry()
//	reg.Subscribe(track.NewLeakReporter())
//
//	tok := reg.Add("ui/banner", track.KindLoad)
//	...
//	reg.Release(tok)
//
// The Default registry is shared by all handles created through the facade;
// wire a real zap logger with track.SetLogger to surface its diagnostics.
package track
