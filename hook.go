package hostbridge

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// CommandFunc handles a hooked command. word holds the whitespace-split
// invocation (word[0] is the command name) and wordEol[i] is the original
// line from word i onward. data is the opaque value given at registration.
type CommandFunc func(word, wordEol []string, data any) Eat

// PrintFunc handles a hooked text event. word holds the event's positional
// arguments.
type PrintFunc func(word []string, data any) Eat

// ServerFunc handles a hooked protocol event.
type ServerFunc func(word, wordEol []string, data any) Eat

// Registration is one live hook or timer. It is returned by the Hook*
// methods and stays valid until revoked, individually or by Teardown.
type Registration struct {
	x        *Bridge
	data     any
	token    HookToken
	cmdFn    CommandFunc
	printFn  PrintFunc
	srvFn    ServerFunc
	timerFn  TimerFunc
	trigger  string
	priority Priority
	kind     HookKind
	revoked  atomic.Bool
}

// Kind returns what the registration is bound to.
func (r *Registration) Kind() HookKind { return r.kind }

// Trigger returns the command, event, or protocol name the registration is
// bound to. Empty for timers.
func (r *Registration) Trigger() string { return r.trigger }

// Revoke uninstalls the registration and returns the user data it was
// created with. Only the first call wins: later calls, and calls racing a
// concurrent revoke, return (nil, false). It is safe to call from within
// the registration's own callback, in which case that invocation's return
// value is still honored, and from any goroutine; off the designated
// goroutine the host-side removal is queued behind the claim, with stale
// deliveries suppressed in the meantime.
func (r *Registration) Revoke() (any, bool) {
	if !r.revoked.CompareAndSwap(false, true) {
		return nil, false
	}
	r.x.hooks.forget(r)
	if r.x.onDesignated() {
		r.removeFromHost()
	} else {
		r.x.Post(r.removeFromHost)
	}
	return r.data, true
}

func (r *Registration) removeFromHost() {
	if err := r.x.host.RemoveHook(r.token); err != nil {
		r.x.logger.Warning().
			Err(err).
			Stringer(`kind`, r.kind).
			Str(`trigger`, r.trigger).
			Log(`removing hook`)
	}
}

// invoke calls the variant the registration was created with. Timer
// registrations never arrive here, they dispatch through tickUser.
func (r *Registration) invoke(word, wordEol []string) Eat {
	switch r.kind {
	case KindCommand:
		return r.cmdFn(word, wordEol, r.data)
	case KindPrint:
		return r.printFn(word, r.data)
	case KindServer:
		return r.srvFn(word, wordEol, r.data)
	default:
		return EatNone
	}
}

// HookCommand registers fn for the named command. help is shown by the
// host's command listing. Thread-confined.
func (x *Bridge) HookCommand(name string, priority Priority, help string, fn CommandFunc, data any) (*Registration, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	return x.install(&Registration{
		x:        x,
		kind:     KindCommand,
		trigger:  name,
		priority: priority,
		data:     data,
		cmdFn:    fn,
	}, help)
}

// HookPrint registers fn for the named text event. Thread-confined.
func (x *Bridge) HookPrint(event string, priority Priority, fn PrintFunc, data any) (*Registration, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	return x.install(&Registration{
		x:        x,
		kind:     KindPrint,
		trigger:  event,
		priority: priority,
		data:     data,
		printFn:  fn,
	}, ``)
}

// HookServer registers fn for the named protocol event. Thread-confined.
func (x *Bridge) HookServer(event string, priority Priority, fn ServerFunc, data any) (*Registration, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	return x.install(&Registration{
		x:        x,
		kind:     KindServer,
		trigger:  event,
		priority: priority,
		data:     data,
		srvFn:    fn,
	}, ``)
}

func (x *Bridge) install(r *Registration, help string) (*Registration, error) {
	if err := x.confined(); err != nil {
		return nil, err
	}
	tok, err := x.host.InstallHook(r.kind, r.trigger, r.priority, help, func(word, wordEol []string) Eat {
		return x.dispatch(r, word, wordEol)
	})
	if err != nil {
		return nil, fmt.Errorf(`hostbridge: installing %s hook %q: %w`, r.kind, r.trigger, err)
	}
	r.token = tok
	x.hooks.remember(r)

	x.logger.Debug().
		Stringer(`kind`, r.kind).
		Str(`trigger`, r.trigger).
		Int(`priority`, int(r.priority)).
		Log(`hook installed`)

	return r, nil
}

// dispatch runs one hook delivery inside a shield frame. A revoked
// registration that the host still delivers to, and any delivery after
// teardown began, is answered with EatNone, as is a callback that panics.
func (x *Bridge) dispatch(r *Registration, word, wordEol []string) Eat {
	if r.revoked.Load() || !x.state.CanAcceptWork() {
		return EatNone
	}
	eat := EatNone
	x.guard(scopeHook, nil, func() {
		eat = r.invoke(word, wordEol)
	})
	if m := x.metrics; m != nil {
		m.noteHook()
	}
	x.publish(Event{Kind: EventHookFired, Hook: r.kind, Trigger: r.trigger, Eat: eat})
	return eat
}

// hookSet tracks live registrations so Teardown can revoke whatever the
// application did not.
type hookSet struct {
	x    *Bridge
	regs []*Registration
	mu   sync.Mutex
}

func newHookSet(x *Bridge) *hookSet {
	return &hookSet{x: x}
}

func (s *hookSet) remember(r *Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, r)
}

func (s *hookSet) forget(r *Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.regs {
		if v == r {
			s.regs = append(s.regs[:i], s.regs[i+1:]...)
			return
		}
	}
}

func (s *hookSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}

// revokeAll claims and uninstalls every live registration, in installation
// order. Runs on the designated goroutine during Teardown.
func (s *hookSet) revokeAll() int {
	s.mu.Lock()
	regs := s.regs
	s.regs = nil
	s.mu.Unlock()

	var n int
	for _, r := range regs {
		if r.revoked.CompareAndSwap(false, true) {
			r.removeFromHost()
			n++
		}
	}
	return n
}
