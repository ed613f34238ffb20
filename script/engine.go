// Package script embeds a Lua interpreter bound to a bridge, so host
// behavior can be scripted at runtime: scripts print, run commands, hook
// events, and install timers through a `host` module, with every callback
// crossing back into Lua under the bridge's usual panic containment.
//
// An Engine is thread-confined the same way the bridge's host surface is:
// the Lua state is not goroutine-safe, so construction, DoString, DoFile,
// and Close are all bound to the designated goroutine.
package script

import (
	"errors"
	"fmt"

	hostbridge "github.com/joeycumines/go-hostbridge"
	lua "github.com/yuin/gopher-lua"
)

// ErrClosed is returned when executing against a closed engine.
var ErrClosed = errors.New(`script: engine is closed`)

// Engine is one Lua interpreter bound to one bridge. Scripts see a `host`
// module, see installModule for its contents. Hooks a script installs are
// tracked and revoked by Close.
type Engine struct {
	x      *hostbridge.Bridge
	L      *lua.LState
	regs   []*hostbridge.Registration
	closed bool
}

// New builds an engine bound to bridge. Thread-confined. The Lua state
// opens only the base, table, string, and math libraries; scripts reach
// the outside world through the host module alone.
func New(x *hostbridge.Bridge) (*Engine, error) {
	if x == nil {
		return nil, fmt.Errorf(`script: nil bridge`)
	}
	if !x.OnDesignated() {
		return nil, fmt.Errorf(`script: engine construction: %w`, hostbridge.ErrOffThread)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	e := &Engine{x: x, L: L}
	e.installModule()
	return e, nil
}

// DoString executes Lua source. Thread-confined.
func (e *Engine) DoString(src string) error {
	if !e.x.OnDesignated() {
		return fmt.Errorf(`script: DoString: %w`, hostbridge.ErrOffThread)
	}
	if e.closed {
		return ErrClosed
	}
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf(`script: %w`, err)
	}
	return nil
}

// DoFile executes a Lua source file. Thread-confined.
func (e *Engine) DoFile(path string) error {
	if !e.x.OnDesignated() {
		return fmt.Errorf(`script: DoFile: %w`, hostbridge.ErrOffThread)
	}
	if e.closed {
		return ErrClosed
	}
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf(`script: %w`, err)
	}
	return nil
}

// Close revokes every hook the engine's scripts installed and releases
// the Lua state. Thread-confined; idempotent.
func (e *Engine) Close() error {
	if !e.x.OnDesignated() {
		return fmt.Errorf(`script: Close: %w`, hostbridge.ErrOffThread)
	}
	if e.closed {
		return nil
	}
	e.closed = true
	for _, r := range e.regs {
		r.Revoke()
	}
	e.regs = nil
	e.L.Close()
	return nil
}

// track remembers an engine-created registration for Close.
func (e *Engine) track(r *hostbridge.Registration) {
	e.regs = append(e.regs, r)
}
