package hostbridge

import (
	"context"
)

// EventKind discriminates diagnostic [Event] variants.
type EventKind int

const (
	// EventFailure is a panic contained at a host boundary. Scope and Err
	// carry the detail; Err is always a *PanicError.
	EventFailure EventKind = iota
	// EventTaskSettled is a queued task that ran to settlement. Task
	// identifies it; Panicked reports whether a shield frame settled it.
	EventTaskSettled
	// EventHookFired is a registration callback that returned. Hook,
	// Trigger, and Eat carry the detail.
	EventHookFired
)

// String returns a human-readable event kind name.
func (k EventKind) String() string {
	switch k {
	case EventFailure:
		return "failure"
	case EventTaskSettled:
		return "task-settled"
	case EventHookFired:
		return "hook-fired"
	default:
		return "unknown"
	}
}

// Event is one diagnostic occurrence inside the bridge. Which fields are
// meaningful depends on Kind.
type Event struct {
	Err      error
	Scope    string
	Trigger  string
	Task     uint64
	Kind     EventKind
	Hook     HookKind
	Eat      Eat
	Panicked bool
}

// SubscribeEvents accepts any `target` that is a channel which can accept
// Event values, and feeds it the bridge's diagnostic stream: contained
// failures, queued-task settlements, and hook firings.
// The returned cancel func MUST be called, unless `ctx` is cancelled.
// WARNING: Sends to `target` are blocking, from the designated goroutine,
// and subscribers must therefore always receive promptly.
func (x *Bridge) SubscribeEvents(ctx context.Context, target any) context.CancelFunc {
	return x.notifier.SubscribeCancel(ctx, nil, target)
}

func (x *Bridge) publish(ev Event) {
	x.notifier.PublishContext(x.ctx, nil, ev)
}
