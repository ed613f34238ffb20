package hostbridge

import (
	"sync"
)

// ResultState represents the lifecycle state of an [AsyncResult].
// A result starts Pending and transitions exactly once to either Ready or
// Failed. State transitions are irreversible.
type ResultState int

const (
	// Pending indicates the work has not completed yet.
	Pending ResultState = iota

	// Ready indicates the work completed with a value.
	Ready

	// Failed indicates the work completed with an error.
	Failed
)

// String returns a human-readable representation of the state.
func (s ResultState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// AsyncResult is a single-assignment future shared between the designated
// goroutine (the one writer) and any number of waiting goroutines.
//
// A result is created Pending by [Submit] and settled exactly once, either
// by the drain running the submitted closure, by the same-goroutine fast
// path, or by teardown failing everything still outstanding. Reads are
// repeatable: every Get observes the same final value.
type AsyncResult[T any] struct {
	value T
	err   error
	done  chan struct{}
	state ResultState
	mu    sync.Mutex
}

func newResult[T any]() *AsyncResult[T] {
	return &AsyncResult[T]{done: make(chan struct{})}
}

// Get blocks the calling goroutine until the result settles, then returns
// the value (Ready) or the captured error (Failed). It never blocks when
// called after settlement, and never blocks the designated goroutine,
// because submissions from that goroutine settle synchronously before
// Submit returns.
func (x *AsyncResult[T]) Get() (T, error) {
	<-x.done
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.value, x.err
}

// TryGet is the non-blocking variant of Get. The boolean reports whether
// the result has settled; value and err are meaningful only when it is
// true.
func (x *AsyncResult[T]) TryGet() (value T, err error, settled bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state == Pending {
		return value, nil, false
	}
	return x.value, x.err, true
}

// State returns the current [ResultState].
func (x *AsyncResult[T]) State() ResultState {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

// Done returns a channel that is closed when the result settles. It is
// provided for select-based composition; bounded waits remain a caller
// concern.
func (x *AsyncResult[T]) Done() <-chan struct{} {
	return x.done
}

// set transitions Pending → Ready. Returns false if already settled.
func (x *AsyncResult[T]) set(value T) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state != Pending {
		return false
	}
	x.state = Ready
	x.value = value
	close(x.done)
	return true
}

// fail transitions Pending → Failed. Returns false if already settled.
func (x *AsyncResult[T]) fail(err error) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.state != Pending {
		return false
	}
	x.state = Failed
	x.err = err
	close(x.done)
	return true
}
