// Package hosttest provides a simulated implementation of the bridge's
// host surface for tests and development. The simulation reproduces the
// property the bridge exists to manage: all host state is owned by one
// goroutine, and every host entry point must be called on it. Calls from
// anywhere else are counted and panic.
//
// A Host is driven like the real thing: construct the bridge on the host
// goroutine (see Attach), inject commands and events with the Inject
// helpers, and read back captured surface output with Output.
package hosttest

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	hostbridge "github.com/joeycumines/go-hostbridge"
)

// Host is a simulated single-threaded host. Its loop goroutine owns all
// state; test code reaches it through Do and the Inject helpers, which
// hop onto the loop goroutine and block until the work completes.
type Host struct {
	do         chan func()
	done       chan struct{}
	surfaces   map[hostbridge.SurfaceKey]*surface
	timers     map[uint64]*timerEntry
	lists      map[string]*listDef
	info       map[string]string
	hooks      []*hookEntry
	order      []hostbridge.SurfaceKey
	cmdlog     []string
	prefs      string
	active     hostbridge.SurfaceKey
	nextTok    uint64
	loopID     atomic.Uint64
	violations atomic.Uint64
	closeOnce  sync.Once
}

// DefaultSurface is the surface a new Host starts with, and its initial
// active surface.
var DefaultSurface = hostbridge.SurfaceKey{Network: "sim", Name: "server"}

// New starts a simulated host. The caller owns it and must Close it.
func New() *Host {
	h := &Host{
		do:       make(chan func()),
		done:     make(chan struct{}),
		surfaces: make(map[hostbridge.SurfaceKey]*surface),
		timers:   make(map[uint64]*timerEntry),
		lists:    make(map[string]*listDef),
		info: map[string]string{
			"version": "2.16.2",
			"network": DefaultSurface.Network,
		},
		prefs:  `{}`,
		active: DefaultSurface,
	}
	h.surfaces[DefaultSurface] = &surface{key: DefaultSurface, info: map[string]string{}}
	h.order = append(h.order, DefaultSurface)

	started := make(chan struct{})
	go h.loop(started)
	<-started
	return h
}

// Attach constructs a bridge on the host's goroutine, which makes that
// goroutine the bridge's designated one.
func Attach(h *Host, opts ...hostbridge.Option) (*hostbridge.Bridge, error) {
	var (
		b   *hostbridge.Bridge
		err error
	)
	h.Do(func() {
		b, err = hostbridge.New(h, opts...)
	})
	return b, err
}

func (h *Host) loop(started chan<- struct{}) {
	h.loopID.Store(goroutineID())
	close(started)
	for {
		select {
		case fn := <-h.do:
			fn()
		case <-h.done:
			return
		}
	}
}

// Do runs fn on the host goroutine and blocks until it returns. Calls
// from the host goroutine itself run inline, so callbacks may use it
// re-entrantly. Do panics if the host is closed.
func (h *Host) Do(fn func()) {
	if h.onLoop() {
		fn()
		return
	}
	ran := make(chan struct{})
	select {
	case h.do <- func() { defer close(ran); fn() }:
		<-ran
	case <-h.done:
		panic(`hosttest: Do after Close`)
	}
}

// Close stops the host goroutine and every simulated timer. Idempotent.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Violations reports how many host entry points were called off the host
// goroutine. A correct bridge keeps this at zero; each violation also
// panics at the offending call site.
func (h *Host) Violations() uint64 {
	return h.violations.Load()
}

func (h *Host) onLoop() bool {
	return goroutineID() == h.loopID.Load()
}

// confine panics on host-API use off the loop goroutine, counting the
// violation first so a recovering caller cannot hide it.
func (h *Host) confine(op string) {
	if h.onLoop() {
		return
	}
	h.violations.Add(1)
	panic(fmt.Sprintf(`hosttest: %s called off the host goroutine`, op))
}

func (h *Host) token() uint64 {
	h.nextTok++
	return h.nextTok
}

// Info returns the named global info field.
func (h *Host) Info(field string) (string, error) {
	h.confine(`Info`)
	v, ok := h.info[field]
	if !ok {
		return "", fmt.Errorf(`hosttest: no info field %q`, field)
	}
	return v, nil
}

// SetInfo sets a global info field. Safe from any goroutine.
func (h *Host) SetInfo(field, value string) {
	h.Do(func() {
		h.info[field] = value
	})
}

func goroutineID() uint64 {
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
