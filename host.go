package hostbridge

import (
	"fmt"
	"time"
)

// Eat is the outcome a hook callback hands back to the host, controlling
// how far the triggering event continues to propagate. The registry passes
// it through unchanged.
type Eat int

const (
	// EatNone lets the event continue to the host and to other plugins.
	EatNone Eat = 0
	// EatHost consumes the event with respect to the host, other plugins
	// still observe it.
	EatHost Eat = 1
	// EatPlugin consumes the event with respect to other plugins, the host
	// still processes it.
	EatPlugin Eat = 2
	// EatAll consumes the event fully.
	EatAll Eat = 3
)

// String returns a human-readable representation of the outcome.
func (e Eat) String() string {
	switch e {
	case EatNone:
		return "None"
	case EatHost:
		return "Host"
	case EatPlugin:
		return "Plugin"
	case EatAll:
		return "All"
	default:
		return fmt.Sprintf("Eat(%d)", int(e))
	}
}

// Priority orders hook callbacks for one trigger: higher priority observes
// the event first.
type Priority int

const (
	PriorityHighest Priority = 127
	PriorityHigh    Priority = 64
	PriorityNorm    Priority = 0
	PriorityLow     Priority = -64
	PriorityLowest  Priority = -128
)

// HookKind distinguishes the host's event sources a hook can bind to.
type HookKind int

const (
	// KindCommand binds to a named user command.
	KindCommand HookKind = iota
	// KindPrint binds to a named text event.
	KindPrint
	// KindServer binds to a named protocol event.
	KindServer
	// KindTimer marks timer registrations. Timers never pass through
	// Host.InstallHook; they are installed via Host.InstallTimer.
	KindTimer
)

// String returns a human-readable representation of the kind.
func (k HookKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindPrint:
		return "print"
	case KindServer:
		return "server"
	case KindTimer:
		return "timer"
	default:
		return fmt.Sprintf("HookKind(%d)", int(k))
	}
}

// SurfaceKey identifies one host surface (a window, tab, or buffer) by the
// network it belongs to and its name. It is plain identifying data with no
// thread affinity, which is what lets cross-thread handles carry it.
type SurfaceKey struct {
	Network string
	Name    string
}

// String returns a human-readable representation of the key.
func (k SurfaceKey) String() string {
	return k.Network + "/" + k.Name
}

// SurfaceToken is the host's opaque reference to a live surface. Tokens are
// only meaningful on the designated goroutine and must never be retained
// across calls that may invalidate them; re-resolve via Host.FindSurface.
type SurfaceToken any

// HookToken is the host's opaque reference to an installed hook or timer.
type HookToken any

// FieldKind is the type of one host list column.
type FieldKind int

const (
	// FieldStr is a string column.
	FieldStr FieldKind = iota
	// FieldInt is an integer column.
	FieldInt
	// FieldTime is a timestamp column.
	FieldTime
	// FieldSurface is a surface-reference column.
	FieldSurface
)

// ListField describes one column of a host list.
type ListField struct {
	Name string
	Kind FieldKind
}

// ListCursor enumerates the rows of one host list. Cursors are confined to
// the designated goroutine and are invalidated by the next host callback;
// the bridge snapshots them rather than holding them, see Bridge.List.
type ListCursor interface {
	// Fields describes the list's columns.
	Fields() []ListField
	// Next advances to the next row, returning false when exhausted.
	Next() bool
	// Str returns the named string field of the current row.
	Str(field string) (string, error)
	// Int returns the named integer field of the current row.
	Int(field string) (int, error)
	// Time returns the named timestamp field of the current row.
	Time(field string) (time.Time, error)
	// Surface returns the named surface-reference field of the current row.
	Surface(field string) (SurfaceToken, error)
	// Close releases the cursor.
	Close() error
}

// Host is the single-threaded native surface the bridge drives. Every
// method must only be called on the designated goroutine; the bridge
// guarantees that for all calls it makes. Implementations are not expected
// to tolerate concurrent use, that hazard is exactly what this package
// exists to contain.
//
// The surface is consumed, not reimplemented: a production binding wraps
// the real host's entry points, while the hosttest subpackage provides a
// simulated implementation for tests and examples.
type Host interface {
	// Print writes text to the currently active surface.
	Print(text string) error
	// Command executes a host command line.
	Command(cmd string) error
	// Emit raises a named text event with positional arguments.
	Emit(event string, args ...string) error
	// Info returns the named global info field.
	Info(field string) (string, error)

	// FindSurface resolves identifying data to a live surface token. The
	// zero key resolves to the currently active surface.
	FindSurface(key SurfaceKey) (SurfaceToken, error)
	// KeyOf returns the identifying data for a live surface token.
	KeyOf(tok SurfaceToken) (SurfaceKey, error)
	// SurfacePrint writes text to the given surface.
	SurfacePrint(tok SurfaceToken, text string) error
	// SurfaceCommand executes a command line in the given surface.
	SurfaceCommand(tok SurfaceToken, cmd string) error
	// SurfaceInfo returns the named info field of the given surface.
	SurfaceInfo(tok SurfaceToken, field string) (string, error)

	// InstallHook binds fn to the named trigger at the given priority.
	// The callback receives the event's word list plus its tail-join form
	// (wordEol[i] is the original text from word i onward), and its outcome
	// is honored per [Eat]. help documents command hooks; hosts ignore it
	// for other kinds.
	InstallHook(kind HookKind, trigger string, priority Priority, help string, fn func(word, wordEol []string) Eat) (HookToken, error)
	// InstallTimer arranges for fn to run on the designated goroutine
	// every interval; fn returning false removes the timer.
	InstallTimer(every time.Duration, fn func() bool) (HookToken, error)
	// RemoveHook uninstalls a hook or timer. Removing an already-removed
	// token is a no-op.
	RemoveHook(tok HookToken) error

	// OpenList opens a cursor over the named host list.
	OpenList(name string) (ListCursor, error)

	// SetPref stores a plugin preference.
	SetPref(name, value string) error
	// Pref returns a stored plugin preference.
	Pref(name string) (string, error)
	// DelPref removes a stored plugin preference.
	DelPref(name string) error
	// PrefNames lists the stored plugin preference names.
	PrefNames() ([]string, error)
}
