package hostbridge

import (
	"sync"
)

// task is one unit of cross-goroutine work: the closure to run on the
// designated goroutine plus the write-end of its result. Created by Submit,
// consumed exactly once by the drain, never reused.
//
// run executes the application closure and settles the result on the
// normal path. fail settles the result without running anything; it is the
// path the shield takes when run panics, and the path teardown takes for
// tasks dropped unexecuted.
type task struct {
	run  func()
	fail func(err error) bool
	id   uint64
}

// taskQueue is a mutex-guarded FIFO of tasks. Insertion order is execution
// order; there is no priority and no reordering at this layer.
type taskQueue struct {
	items []task
	head  int
	mu    sync.Mutex
}

// push appends a task.
func (q *taskQueue) push(t task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
}

// pop removes and returns the oldest task. The drain pops one task at a
// time rather than detaching the whole queue, which is what lets work
// submitted by a draining task run within the same tick while budget
// remains.
func (q *taskQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return task{}, false
	}
	t := q.items[q.head]
	q.items[q.head] = task{} // release references
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return t, true
}

// size returns the number of queued tasks.
func (q *taskQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// detach removes and returns all queued tasks. Used by teardown to drop
// unexecuted work in one motion.
func (q *taskQueue) detach() []task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items[q.head:]
	q.items = nil
	q.head = 0
	return out
}
