package script

import (
	"fmt"
	"time"

	hostbridge "github.com/joeycumines/go-hostbridge"
	lua "github.com/yuin/gopher-lua"
)

// installModule registers the `host` module:
//
//	host.print(text)
//	host.command(line)
//	host.emit(event, ...)
//	host.info(field) -> value | nil, error
//	host.hook_command(name, fn [, help [, priority]]) -> registration
//	host.hook_print(event, fn [, priority]) -> registration
//	host.hook_server(event, fn [, priority]) -> registration
//	host.hook_timer(ms, fn) -> registration
//	host.unhook(registration) -> boolean
//	host.pref_set(name, value)
//	host.pref_get(name) -> value | nil
//	host.pref_del(name)
//	host.pref_names() -> table
//	host.surface_print(network, name, text)
//	host.strip(text [, flags]) -> text
//
// plus the EAT_* and PRI_* constants. Hook callbacks receive (word,
// word_eol) tables and return an EAT_* value; timer callbacks return a
// boolean keep. A Lua error inside a callback panics on purpose, which
// hands it to the bridge's containment to report and settle.
func (e *Engine) installModule() {
	L := e.L
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"print":         e.luaPrint,
		"command":       e.luaCommand,
		"emit":          e.luaEmit,
		"info":          e.luaInfo,
		"hook_command":  e.luaHookCommand,
		"hook_print":    e.luaHookPrint,
		"hook_server":   e.luaHookServer,
		"hook_timer":    e.luaHookTimer,
		"unhook":        e.luaUnhook,
		"pref_set":      e.luaPrefSet,
		"pref_get":      e.luaPrefGet,
		"pref_del":      e.luaPrefDel,
		"pref_names":    e.luaPrefNames,
		"surface_print": e.luaSurfacePrint,
		"strip":         e.luaStrip,
	})

	mod.RawSetString("EAT_NONE", lua.LNumber(hostbridge.EatNone))
	mod.RawSetString("EAT_HOST", lua.LNumber(hostbridge.EatHost))
	mod.RawSetString("EAT_PLUGIN", lua.LNumber(hostbridge.EatPlugin))
	mod.RawSetString("EAT_ALL", lua.LNumber(hostbridge.EatAll))
	mod.RawSetString("PRI_HIGHEST", lua.LNumber(hostbridge.PriorityHighest))
	mod.RawSetString("PRI_HIGH", lua.LNumber(hostbridge.PriorityHigh))
	mod.RawSetString("PRI_NORM", lua.LNumber(hostbridge.PriorityNorm))
	mod.RawSetString("PRI_LOW", lua.LNumber(hostbridge.PriorityLow))
	mod.RawSetString("PRI_LOWEST", lua.LNumber(hostbridge.PriorityLowest))

	L.SetGlobal("host", mod)
}

func (e *Engine) luaPrint(L *lua.LState) int {
	text := L.CheckString(1)
	if err := e.x.Print(text); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaCommand(L *lua.LState) int {
	line := L.CheckString(1)
	if err := e.x.Command(line); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaEmit(L *lua.LState) int {
	event := L.CheckString(1)
	args := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}
	if err := e.x.Emit(event, args...); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaInfo(L *lua.LState) int {
	field := L.CheckString(1)
	v, err := e.x.Info(field)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(v))
	return 1
}

func (e *Engine) luaHookCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	help := L.OptString(3, "")
	priority := hostbridge.Priority(L.OptInt(4, int(hostbridge.PriorityNorm)))

	reg, err := e.x.HookCommand(name, priority, help, func(word, wordEol []string, _ any) hostbridge.Eat {
		return e.callEat(fn, word, wordEol)
	}, nil)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.track(reg)
	return e.pushRegistration(L, reg)
}

func (e *Engine) luaHookPrint(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	priority := hostbridge.Priority(L.OptInt(3, int(hostbridge.PriorityNorm)))

	reg, err := e.x.HookPrint(event, priority, func(word []string, _ any) hostbridge.Eat {
		return e.callEat(fn, word, nil)
	}, nil)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.track(reg)
	return e.pushRegistration(L, reg)
}

func (e *Engine) luaHookServer(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	priority := hostbridge.Priority(L.OptInt(3, int(hostbridge.PriorityNorm)))

	reg, err := e.x.HookServer(event, priority, func(word, wordEol []string, _ any) hostbridge.Eat {
		return e.callEat(fn, word, wordEol)
	}, nil)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.track(reg)
	return e.pushRegistration(L, reg)
}

func (e *Engine) luaHookTimer(L *lua.LState) int {
	ms := L.CheckInt(1)
	fn := L.CheckFunction(2)

	reg, err := e.x.HookTimer(time.Duration(ms)*time.Millisecond, func(_ any) bool {
		return e.callKeep(fn)
	}, nil)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	e.track(reg)
	return e.pushRegistration(L, reg)
}

func (e *Engine) luaUnhook(L *lua.LState) int {
	ud := L.CheckUserData(1)
	reg, ok := ud.Value.(*hostbridge.Registration)
	if !ok {
		L.RaiseError("unhook: not a registration")
		return 0
	}
	_, revoked := reg.Revoke()
	L.Push(lua.LBool(revoked))
	return 1
}

func (e *Engine) luaPrefSet(L *lua.LState) int {
	name := L.CheckString(1)
	value := L.CheckString(2)
	if err := e.x.SetPref(name, value); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaPrefGet(L *lua.LState) int {
	name := L.CheckString(1)
	v, err := e.x.Pref(name)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

func (e *Engine) luaPrefDel(L *lua.LState) int {
	name := L.CheckString(1)
	if err := e.x.DelPref(name); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaPrefNames(L *lua.LState) int {
	names, err := e.x.PrefNames()
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	t := L.NewTable()
	for i, name := range names {
		t.RawSetInt(i+1, lua.LString(name))
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaSurfacePrint(L *lua.LState) int {
	network := L.CheckString(1)
	name := L.CheckString(2)
	text := L.CheckString(3)
	s, err := e.x.FindSurface(hostbridge.SurfaceKey{Network: network, Name: name})
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	if err := s.Print(text); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaStrip(L *lua.LState) int {
	text := L.CheckString(1)
	flags := hostbridge.StripFlags(L.OptInt(2, int(hostbridge.StripAll)))
	L.Push(lua.LString(hostbridge.Strip(text, flags)))
	return 1
}

func (e *Engine) pushRegistration(L *lua.LState, reg *hostbridge.Registration) int {
	ud := L.NewUserData()
	ud.Value = reg
	L.Push(ud)
	return 1
}

// callEat invokes a Lua hook callback with word and word_eol tables and
// maps its return to an Eat. A Lua error is re-raised as a panic so the
// bridge's containment reports it; the delivery then defaults to EAT_NONE.
func (e *Engine) callEat(fn *lua.LFunction, word, wordEol []string) hostbridge.Eat {
	top := e.L.GetTop()
	e.L.Push(fn)
	e.L.Push(stringsTable(e.L, word))
	e.L.Push(stringsTable(e.L, wordEol))
	if err := e.L.PCall(2, 1, nil); err != nil {
		panic(fmt.Errorf(`script: hook callback: %w`, err))
	}
	ret := e.L.Get(top + 1)
	e.L.SetTop(top)
	if n, ok := ret.(lua.LNumber); ok {
		return hostbridge.Eat(n)
	}
	return hostbridge.EatNone
}

// callKeep invokes a Lua timer callback and maps its return to a keep
// decision. Returning nothing, nil, or false removes the timer, matching
// Lua's truthiness.
func (e *Engine) callKeep(fn *lua.LFunction) bool {
	top := e.L.GetTop()
	e.L.Push(fn)
	if err := e.L.PCall(0, 1, nil); err != nil {
		panic(fmt.Errorf(`script: timer callback: %w`, err))
	}
	ret := e.L.Get(top + 1)
	e.L.SetTop(top)
	return lua.LVAsBool(ret)
}

func stringsTable(L *lua.LState, words []string) *lua.LTable {
	t := L.NewTable()
	for i, w := range words {
		t.RawSetInt(i+1, lua.LString(w))
	}
	return t
}
