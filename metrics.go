package hostbridge

import (
	"sync"
	"time"
)

// Metrics is a point-in-time snapshot of the bridge's instrumentation,
// collected only when the bridge was built with WithMetrics. Snapshots are
// plain data, safe to retain and compare.
type Metrics struct {
	// Ticks is the number of drain ticks that executed at least one task.
	Ticks uint64
	// TasksDrained is the number of queued tasks executed by drain ticks.
	TasksDrained uint64
	// TasksInline is the number of submissions that took the same-goroutine
	// fast path and never touched the queue.
	TasksInline uint64
	// HookFirings is the number of hook callback deliveries.
	HookFirings uint64
	// ContainedFailures is the number of panics contained at host
	// boundaries.
	ContainedFailures uint64
	// DuplicateSettles is the number of ignored second settlement attempts.
	DuplicateSettles uint64
	// PendingResults is the number of results submitted but not yet
	// settled.
	PendingResults int

	// QueueDepth is the backlog after the most recent observation.
	QueueDepth int
	// QueueDepthMax is the largest backlog observed.
	QueueDepthMax int
	// QueueDepthAvg is an exponential moving average of the backlog, with
	// alpha 0.1, initialized to the first observation.
	QueueDepthAvg float64

	// Tick latency distribution, over ticks that executed at least one
	// task. Estimated streaming, see quantileSet.
	TickP50  time.Duration
	TickP90  time.Duration
	TickP99  time.Duration
	TickMax  time.Duration
	TickMean time.Duration
}

// metrics is the collection side, shared by the drain and the shield.
// A nil *metrics disables collection; the note methods are only called
// behind nil checks on the hot paths.
type metrics struct {
	tickLat   *quantileSet
	ticks     uint64
	tasks     uint64
	fastPath  uint64
	hooks     uint64
	failures  uint64
	depthCur  int
	depthMax  int
	depthAvg  float64
	depthSeen bool
	mu        sync.Mutex
}

func newMetrics() *metrics {
	return &metrics{tickLat: newQuantileSet(0.50, 0.90, 0.99)}
}

func (m *metrics) noteTick(tasks int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
	m.tasks += uint64(tasks)
	m.tickLat.observe(float64(d))
}

func (m *metrics) noteQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depthCur = depth
	if depth > m.depthMax {
		m.depthMax = depth
	}
	if !m.depthSeen {
		m.depthAvg = float64(depth)
		m.depthSeen = true
	} else {
		m.depthAvg = 0.9*m.depthAvg + 0.1*float64(depth)
	}
}

func (m *metrics) noteFastPath() {
	m.mu.Lock()
	m.fastPath++
	m.mu.Unlock()
}

func (m *metrics) noteHook() {
	m.mu.Lock()
	m.hooks++
	m.mu.Unlock()
}

func (m *metrics) noteFailure() {
	m.mu.Lock()
	m.failures++
	m.mu.Unlock()
}

func (m *metrics) snapshot(duplicates uint64, pending int) Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		Ticks:             m.ticks,
		TasksDrained:      m.tasks,
		TasksInline:       m.fastPath,
		HookFirings:       m.hooks,
		ContainedFailures: m.failures,
		DuplicateSettles:  duplicates,
		PendingResults:    pending,
		QueueDepth:        m.depthCur,
		QueueDepthMax:     m.depthMax,
		QueueDepthAvg:     m.depthAvg,
		TickP50:           time.Duration(m.tickLat.quantile(0)),
		TickP90:           time.Duration(m.tickLat.quantile(1)),
		TickP99:           time.Duration(m.tickLat.quantile(2)),
		TickMax:           time.Duration(m.tickLat.maximum()),
		TickMean:          time.Duration(m.tickLat.mean()),
	}
}

// Metrics returns a snapshot of the bridge's instrumentation. Safe from
// any goroutine. When the bridge was built without WithMetrics it returns
// the zero Metrics.
func (x *Bridge) Metrics() Metrics {
	if x.metrics == nil {
		return Metrics{}
	}
	return x.metrics.snapshot(x.duplicates.Load(), x.registry.size())
}
