// Package hostbridge bridges concurrent Go plugin code onto a host whose
// native API is single-threaded, providing task dispatch onto the host's
// goroutine, awaitable results, panic containment at every host boundary,
// and hook registration with guaranteed cleanup.
//
// # Architecture
//
// A [Bridge] is attached to a [Host] on the host's own goroutine, called
// the designated goroutine. Work from other goroutines is submitted with
// [Submit], queued in arrival order, and drained in bounded spurts by a
// recurring host timer, so the host's own event handling keeps running
// between spurts. Each submission returns an [AsyncResult] that settles
// exactly once.
//
// The host surface is consumed through the [Host] interface rather than
// reimplemented; the hosttest subpackage provides a simulated host for
// tests and development, and the script subpackage exposes a bridge to
// embedded Lua.
//
// # Thread Safety
//
// The package splits its API by goroutine affinity:
//   - [Submit], [Bridge.Do], [Bridge.Post], [AsyncResult.Get], and
//     [RemoteSurface] operations are safe from any goroutine
//   - [Bridge.Print], [Surface], hook registration, and other
//     thread-confined operations reject use off the designated goroutine
//     with an *[OffThreadError] before any host state is touched
//   - [Registration.Revoke] is safe from any goroutine, idempotent, and
//     safe to call from within the registration's own callback
//
// # Execution Model
//
// Submissions from the designated goroutine take a synchronous fast path
// and never enqueue, so host-driven code cannot deadlock awaiting work
// that only the current goroutine could run. Queued tasks are popped one
// at a time, up to a per-tick budget: work a task submits runs within the
// same tick while budget remains, and waits for the next tick otherwise.
//
// Every host-to-application boundary (task, hook callback, timer callback)
// runs inside a shield frame: a panic is contained, reported through the
// host's print path, and settled into the operation's result as a
// *[PanicError]. The host is never unwound.
//
// # Usage
//
//	// On the host's goroutine, typically plugin init:
//	bridge, err := hostbridge.New(host)
//	if err != nil {
//	    return err
//	}
//
//	// From any goroutine:
//	res := hostbridge.Submit(bridge, func() (string, error) {
//	    return bridge.Info(`network`)
//	})
//	network, err := res.Get()
//
//	// On unload:
//	_ = bridge.Teardown()
//
// # Error Types
//
// The package reports failures through typed errors:
//   - *[OffThreadError]: thread-confined operation off the designated
//     goroutine, matches [ErrOffThread]
//   - *[ResolutionError]: a surface identity that no longer resolves,
//     matches [ErrNoSuchSurface]
//   - *[PanicError]: a contained application panic
//   - [ErrTornDown]: operations after, and results orphaned by, Teardown
//
// All error types implement the standard [error] interface and support
// [errors.Is] matching.
package hostbridge
