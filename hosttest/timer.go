package hosttest

import (
	"errors"
	"time"

	hostbridge "github.com/joeycumines/go-hostbridge"
)

// timerEntry is one installed timer. A runner goroutine owns the ticker;
// every firing hops onto the host goroutine like the real host's timer
// callbacks do.
type timerEntry struct {
	fn   func() bool
	stop chan struct{}
	id   uint64
}

// InstallTimer arranges for fn to run on the host goroutine every
// interval. fn returning false removes the timer.
func (h *Host) InstallTimer(every time.Duration, fn func() bool) (hostbridge.HookToken, error) {
	h.confine(`InstallTimer`)
	if fn == nil {
		return nil, errors.New(`hosttest: nil timer callback`)
	}
	if every <= 0 {
		return nil, errors.New(`hosttest: non-positive timer interval`)
	}
	t := &timerEntry{
		id:   h.token(),
		fn:   fn,
		stop: make(chan struct{}),
	}
	h.timers[t.id] = t
	go h.runTimer(t, every)
	return t.id, nil
}

func (h *Host) runTimer(t *timerEntry, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-t.stop:
			return
		case <-tick.C:
			keep := false
			h.Do(func() {
				if _, live := h.timers[t.id]; !live {
					return
				}
				keep = t.fn()
				if !keep {
					delete(h.timers, t.id)
				}
			})
			if !keep {
				return
			}
		}
	}
}
