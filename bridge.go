package hostbridge

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	bigbuff "github.com/joeycumines/go-bigbuff"
	"github.com/joeycumines/logiface"
)

// Bridge ties application code running on arbitrary goroutines to a host
// whose native surface is usable only from one designated goroutine. It
// owns the task queue, the pending-result registry, and the hook registry;
// all of them live from New to Teardown, so nothing outlasts the plugin
// instance they serve.
//
// Construct with New on the designated goroutine (the goroutine the host
// drives its callbacks on); the constructor captures that goroutine's
// identity and installs the recurring host timer that drives the drain.
type Bridge struct {
	host       Host
	registry   *registry
	hooks      *hookSet
	metrics    *metrics
	logger     *logiface.Logger[logiface.Event]
	ctx        context.Context
	cancel     context.CancelFunc
	drainTok   HookToken
	queue      taskQueue
	notifier   bigbuff.Notifier
	designated uint64
	spurtSize  int
	duplicates atomic.Uint64
	stack      bool
	state      lifecycle
}

// New attaches a bridge to the host. It must be called on the designated
// goroutine: whichever goroutine calls New is the one all thread-confined
// operations are bound to, and the one the host must drive.
func New(host Host, opts ...Option) (*Bridge, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	x := &Bridge{
		host:       host,
		registry:   newRegistry(),
		logger:     cfg.logger,
		designated: getGoroutineID(),
		spurtSize:  cfg.spurtSize,
		stack:      cfg.stackTraces,
	}
	x.ctx, x.cancel = context.WithCancel(context.Background())
	x.hooks = newHookSet(x)
	if cfg.metrics {
		x.metrics = newMetrics()
	}

	tok, err := host.InstallTimer(cfg.tickInterval, x.tick)
	if err != nil {
		return nil, fmt.Errorf(`hostbridge: installing drain timer: %w`, err)
	}
	x.drainTok = tok

	x.logger.Debug().
		Uint64(`goroutine`, x.designated).
		Dur(`tick`, cfg.tickInterval).
		Int(`spurt`, cfg.spurtSize).
		Log(`bridge attached`)

	return x, nil
}

// State returns the bridge's lifecycle state.
func (x *Bridge) State() State {
	return x.state.Load()
}

// Submit schedules fn to run on the designated goroutine and returns its
// result immediately. The returned AsyncResult settles with fn's value, or
// Failed with fn's error, or Failed with a *PanicError if fn panics.
//
// Called from the designated goroutine itself, Submit takes a fast path:
// fn runs synchronously and the result is already settled on return. The
// queue is bypassed entirely, so the designated goroutine can never block
// on work only it could drain.
//
// Called after teardown, Submit returns an already-Failed result wrapping
// ErrTornDown. fn must not assume it runs before Submit returns.
func Submit[T any](x *Bridge, fn func() (T, error)) *AsyncResult[T] {
	res := newResult[T]()
	if fn == nil {
		res.fail(ErrNilCallback)
		return res
	}

	if x.onDesignated() {
		if !x.state.CanAcceptWork() {
			res.fail(ErrTornDown)
			return res
		}
		settleInline(x, res, fn)
		if m := x.metrics; m != nil {
			m.noteFastPath()
		}
		return res
	}

	id, ok := x.registry.add(res)
	if !ok {
		res.fail(ErrTornDown)
		return res
	}

	x.queue.push(task{
		id: id,
		run: func() {
			value, err := fn()
			var settled bool
			if err != nil {
				settled = res.fail(err)
			} else {
				settled = res.set(value)
			}
			if !settled {
				x.noteDuplicateSettle(id)
			}
			x.registry.remove(id)
		},
		fail: func(err error) bool {
			defer x.registry.remove(id)
			return res.fail(err)
		},
	})

	if m := x.metrics; m != nil {
		m.noteQueueDepth(x.queue.size())
	}

	return res
}

// settleInline runs fn in a shield frame on the designated goroutine and
// settles res before returning.
func settleInline[T any](x *Bridge, res *AsyncResult[T], fn func() (T, error)) {
	x.guard(scopeTask, res.fail, func() {
		value, err := fn()
		if err != nil {
			res.fail(err)
		} else {
			res.set(value)
		}
	})
}

// Do schedules fn like Submit and blocks until it completes, returning its
// error. From the designated goroutine it is fully synchronous.
func (x *Bridge) Do(fn func() error) error {
	_, err := Submit(x, func() (struct{}, error) {
		return struct{}{}, fn()
	}).Get()
	return err
}

// Post schedules fn like Submit, discarding the result. Contained failures
// are still reported through the usual channel.
func (x *Bridge) Post(fn func()) {
	if fn == nil {
		return
	}
	Submit(x, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

// Print writes text to the host's active surface. Thread-confined.
func (x *Bridge) Print(text string) error {
	if err := x.confined(); err != nil {
		return err
	}
	return x.host.Print(text)
}

// Command executes a host command line. Thread-confined.
func (x *Bridge) Command(cmd string) error {
	if err := x.confined(); err != nil {
		return err
	}
	return x.host.Command(cmd)
}

// Emit raises a named text event with positional arguments. Thread-confined.
func (x *Bridge) Emit(event string, args ...string) error {
	if err := x.confined(); err != nil {
		return err
	}
	return x.host.Emit(event, args...)
}

// Info returns the named global info field. Thread-confined.
func (x *Bridge) Info(field string) (string, error) {
	if err := x.confined(); err != nil {
		return ``, err
	}
	return x.host.Info(field)
}

// Teardown detaches the bridge from the host: the drain timer is removed,
// every remaining registration is revoked, queued-but-unexecuted tasks are
// dropped, and every still-pending AsyncResult is failed with ErrTornDown
// so no waiting goroutine blocks past the bridge's lifetime.
//
// Teardown is thread-confined (the host drives unload on the designated
// goroutine) and idempotent; second and later calls return ErrTornDown.
func (x *Bridge) Teardown() error {
	if id := getGoroutineID(); id != x.designated {
		return &OffThreadError{Designated: x.designated, Caller: id}
	}
	if !x.state.TryTransition(StateActive, StateTearingDown) {
		return ErrTornDown
	}

	if err := x.host.RemoveHook(x.drainTok); err != nil {
		x.logger.Warning().Err(err).Log(`removing drain timer`)
	}

	revoked := x.hooks.revokeAll()
	dropped := len(x.queue.detach())
	failed := x.registry.failAll(ErrTornDown)

	x.state.Store(StateTornDown)
	x.cancel()

	x.logger.Debug().
		Int(`revoked`, revoked).
		Int(`dropped`, dropped).
		Int(`failed`, failed).
		Log(`bridge torn down`)

	return nil
}

// OnDesignated reports whether the caller is on the designated goroutine.
// Layers built over the bridge use it to gate their own thread-confined
// state the same way the bridge gates the host's.
func (x *Bridge) OnDesignated() bool {
	return x.onDesignated()
}

// confined rejects calls made off the designated goroutine or after
// teardown, before any host state is touched.
func (x *Bridge) confined() error {
	if id := getGoroutineID(); id != x.designated {
		return &OffThreadError{Designated: x.designated, Caller: id}
	}
	if !x.state.CanAcceptWork() {
		return ErrTornDown
	}
	return nil
}

// onDesignated reports whether the caller is the designated goroutine.
func (x *Bridge) onDesignated() bool {
	return getGoroutineID() == x.designated
}

// noteDuplicateSettle records a second settlement attempt on one result.
// The attempt is ignored rather than overwriting; seeing this at all means
// the single-producer-per-item discipline was broken somewhere.
func (x *Bridge) noteDuplicateSettle(id uint64) {
	x.duplicates.Add(1)
	x.logger.Warning().
		Uint64(`task`, id).
		Log(`duplicate settle attempt ignored`)
}

// getGoroutineID returns the current goroutine's ID.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
