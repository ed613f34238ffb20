package hostbridge

import (
	"fmt"
	"runtime"
)

// Scopes name the host-to-application boundary a failure was contained at.
const (
	scopeTask  = `task`
	scopeHook  = `hook`
	scopeTimer = `timer`
)

// panicBanner prefixes contained-failure reports printed to the host's
// active surface. \x0304 is the host's red-text markup, matching what
// users of the native client expect a crashing plugin to look like.
const panicBanner = "\x0304<<Panicked!>>\t"

// guard runs fn at a host-to-application boundary, containing any panic so
// the host's native frames never unwind. A contained failure is reported
// on the host's print surface, logged, counted, published to event
// subscribers, and returned.
//
// settle, if non-nil, is invoked with the failure from inside the
// containment frame itself rather than by the caller. That distinction
// matters when fn exits via runtime.Goexit: control never returns to the
// caller, but deferred frames still run, so the pending result settles
// before the goroutine is lost.
func (x *Bridge) guard(scope string, settle func(error) bool, fn func()) (pe *PanicError) {
	completed := false
	defer func() {
		r := recover()
		if r == nil {
			if completed {
				return
			}
			// No panic and yet fn never completed: runtime.Goexit.
			r = ErrGoexit
		}
		pe = &PanicError{Value: r}
		if x.stack {
			pe.Stack = stackSnapshot()
		}
		x.report(scope, pe)
		if settle != nil && !settle(pe) {
			x.duplicates.Add(1)
			x.logger.Warning().
				Str(`scope`, scope).
				Log(`duplicate settle attempt ignored`)
		}
	}()
	fn()
	completed = true
	return
}

// report surfaces a contained failure through every channel the bridge
// has: the host's own print path first, so the person running the host
// sees it even with no logger attached.
func (x *Bridge) report(scope string, pe *PanicError) {
	if err := x.host.Print(fmt.Sprintf(`%s%s: %v`, panicBanner, scope, pe.Value)); err != nil {
		x.logger.Warning().Err(err).Log(`printing contained failure`)
	}
	if len(pe.Stack) != 0 {
		_ = x.host.Print(string(pe.Stack))
	}

	x.logger.Err().
		Str(`scope`, scope).
		Any(`panic`, pe.Value).
		Log(`contained application failure`)

	if m := x.metrics; m != nil {
		m.noteFailure()
	}
	x.publish(Event{Kind: EventFailure, Scope: scope, Err: pe})
}

// stackSnapshot captures the current goroutine's stack, growing the buffer
// until the trace fits.
func stackSnapshot() []byte {
	buf := make([]byte, 4<<10)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, len(buf)*2)
	}
}
