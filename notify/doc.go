// Package notify provides the one-shot completion notifier used by asset
// handles.
//
// A Completion is a promise-like object with four states: Pending,
// Succeeded, Failed, and Canceled. It settles exactly once; the first
// transition wins and later ones are no-ops. Observers can poll State, wait
// on Done or Await, or register OnSettled callbacks.
//
//	c := notify.New[string]()
//	c.OnSettled(func(v string, err error) { ... })
//	c.Resolve("hello") // settles; callback runs
//	c.Fail(err)        // no-op, already settled
package notify
