package hostbridge

import (
	"time"
)

// tick is the recurring host-timer callback installed by New. Each tick
// pops and runs queued tasks one at a time, up to the configured spurt
// size, then yields back to the host so its own event handling never
// starves behind a busy plugin.
//
// Because tasks are popped singly rather than snapshotted as a batch, a
// task that submits follow-up work from the designated goroutine has that
// work run within the same tick while budget remains; once the spurt is
// spent, leftovers wait for the next tick. Same-goroutine submitters that
// need strictly synchronous nesting should call Submit directly, which
// takes the fast path and bypasses the queue.
//
// Returning true keeps the timer installed; after teardown it reports
// false so a host that missed the RemoveHook still drops it.
func (x *Bridge) tick() bool {
	if !x.state.CanAcceptWork() {
		return false
	}

	var start time.Time
	if x.metrics != nil {
		start = time.Now()
	}

	var n int
	for n < x.spurtSize {
		t, ok := x.queue.pop()
		if !ok {
			break
		}
		x.runTask(t)
		n++
	}

	if m := x.metrics; m != nil {
		if n > 0 {
			m.noteTick(n, time.Since(start))
		}
		m.noteQueueDepth(x.queue.size())
	}
	if n > 0 {
		x.logger.Trace().
			Int(`tasks`, n).
			Int(`backlog`, x.queue.size()).
			Log(`drain tick`)
	}

	return true
}

// runTask executes one queued task inside a shield frame. A panic settles
// the task's result Failed without disturbing siblings later in the tick.
func (x *Bridge) runTask(t task) {
	pe := x.guard(scopeTask, t.fail, t.run)
	x.publish(Event{Kind: EventTaskSettled, Task: t.id, Panicked: pe != nil})
}
