package hostbridge

import (
	"sync"
)

// failer is the write-end a registry holds for each pending result. It is
// satisfied by every AsyncResult instantiation regardless of value type.
type failer interface {
	fail(err error) bool
}

// registry tracks pending results so teardown can fail the lot. Entries
// are removed as results settle; unlike a general promise registry there
// is no scavenging, because every entry has an owner that either settles
// it (drain, fast path) or is the teardown itself.
type registry struct {
	pending map[uint64]failer
	nextID  uint64
	closed  bool
	mu      sync.Mutex
}

func newRegistry() *registry {
	return &registry{
		pending: make(map[uint64]failer),
		nextID:  1, // 0 is the null marker
	}
}

// add registers a pending result, returning its id. It refuses once the
// registry is closed, so no result can slip in behind failAll and hang.
func (r *registry) add(f failer) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, false
	}
	id := r.nextID
	r.nextID++
	r.pending[id] = f
	return id, true
}

// remove drops a settled result from tracking.
func (r *registry) remove(id uint64) {
	if id == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}

// size returns the number of tracked pending results.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// failAll fails every pending result with the given error and closes the
// registry. Called during teardown so no waiting goroutine hangs past the
// bridge's lifetime. Returns the number of results failed.
func (r *registry) failAll(err error) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	var n int
	for id, f := range r.pending {
		if f.fail(err) {
			n++
		}
		delete(r.pending, id)
	}
	return n
}
