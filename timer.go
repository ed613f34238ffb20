package hostbridge

import (
	"fmt"
	"time"
)

// TimerFunc handles a timer firing. Returning true keeps the timer
// installed; returning false revokes it, equivalent to calling Revoke on
// its registration. data is the opaque value given at registration.
type TimerFunc func(data any) bool

// HookTimer arranges for fn to run on the designated goroutine every
// interval. Thread-confined.
func (x *Bridge) HookTimer(every time.Duration, fn TimerFunc, data any) (*Registration, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	if every <= 0 {
		return nil, fmt.Errorf(`hostbridge: timer interval must be positive, got %s`, every)
	}
	if err := x.confined(); err != nil {
		return nil, err
	}

	r := &Registration{
		x:       x,
		kind:    KindTimer,
		data:    data,
		timerFn: fn,
	}
	tok, err := x.host.InstallTimer(every, func() bool {
		return x.tickUser(r)
	})
	if err != nil {
		return nil, fmt.Errorf(`hostbridge: installing timer: %w`, err)
	}
	r.token = tok
	x.hooks.remember(r)

	x.logger.Debug().
		Dur(`every`, every).
		Log(`timer installed`)

	return r, nil
}

// HookTimerOnce arranges for fn to run once on the designated goroutine
// after the given delay, revoking itself afterwards. Thread-confined.
func (x *Bridge) HookTimerOnce(after time.Duration, fn func(data any), data any) (*Registration, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	return x.HookTimer(after, func(data any) bool {
		fn(data)
		return false
	}, data)
}

// tickUser runs one user-timer firing inside a shield frame. A panicking
// callback cannot say whether it wanted to continue, so the timer is
// removed rather than re-running it every interval.
func (x *Bridge) tickUser(r *Registration) bool {
	if r.revoked.Load() || !x.state.CanAcceptWork() {
		return false
	}

	keep := false
	x.guard(scopeTimer, nil, func() {
		keep = r.timerFn(r.data)
	})
	if !keep {
		// The host drops the timer on a false return; claim the
		// registration so Revoke and Teardown know not to.
		if r.revoked.CompareAndSwap(false, true) {
			x.hooks.forget(r)
		}
	}
	x.publish(Event{Kind: EventHookFired, Hook: KindTimer, Eat: EatNone})
	return keep
}
