package hostbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsDisabledByDefault(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	Submit(x, func() (int, error) { return 1, nil })

	if got := x.Metrics(); got != (Metrics{}) {
		t.Fatalf("expected the zero snapshot without WithMetrics, got %+v", got)
	}
}

func TestMetricsCounters(t *testing.T) {
	h := newStubHost()
	x, err := New(h, WithMetrics(true), WithSpurtSize(4))
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	// Two inline submissions.
	Submit(x, func() (int, error) { return 1, nil })
	Submit(x, func() (int, error) { return 2, nil })

	// Six queued submissions: two ticks at spurt size four.
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i := 0; i < 6; i++ {
			Submit(x, func() (int, error) { return i, nil })
		}
	}()
	<-submitted
	x.tick()
	x.tick()

	// One hook firing, which panics, so it counts a failure too.
	_, err = x.HookPrint("Channel Message", PriorityNorm, func(word []string, data any) Eat {
		panic("counted")
	}, nil)
	require.NoError(t, err)
	h.fire(KindPrint, "Channel Message", []string{"nick", "hi"}, nil)

	m := x.Metrics()
	require.Equal(t, uint64(2), m.Ticks)
	require.Equal(t, uint64(6), m.TasksDrained)
	require.Equal(t, uint64(2), m.TasksInline)
	require.Equal(t, uint64(1), m.HookFirings)
	require.Equal(t, uint64(1), m.ContainedFailures)
	require.Equal(t, 0, m.PendingResults)
	require.Equal(t, 0, m.QueueDepth)
	require.Equal(t, 6, m.QueueDepthMax)
	if m.QueueDepthAvg <= 0 {
		t.Fatalf("expected a positive depth average, got %v", m.QueueDepthAvg)
	}
}

func TestMetricsPendingResults(t *testing.T) {
	h := newStubHost()
	x, err := New(h, WithMetrics(true))
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	ready := make(chan *AsyncResult[int])
	go func() {
		ready <- Submit(x, func() (int, error) { return 1, nil })
	}()
	res := <-ready

	if got := x.Metrics().PendingResults; got != 1 {
		t.Fatalf("expected 1 pending result, got %d", got)
	}

	x.tick()
	_, err = res.Get()
	require.NoError(t, err)

	if got := x.Metrics().PendingResults; got != 0 {
		t.Fatalf("expected 0 pending results after the drain, got %d", got)
	}
}

func TestMetricsTickLatencyQuantiles(t *testing.T) {
	m := newMetrics()
	for i := 1; i <= 1000; i++ {
		m.noteTick(1, time.Duration(i)*time.Microsecond)
	}
	snap := m.snapshot(0, 0)

	// Uniform 1..1000 microseconds; the P² estimates land near the true
	// percentiles without retaining the samples.
	approx := func(got time.Duration, want time.Duration) bool {
		d := got - want
		if d < 0 {
			d = -d
		}
		return d <= want/10+50*time.Microsecond
	}
	if !approx(snap.TickP50, 500*time.Microsecond) {
		t.Errorf("P50: got %v", snap.TickP50)
	}
	if !approx(snap.TickP90, 900*time.Microsecond) {
		t.Errorf("P90: got %v", snap.TickP90)
	}
	if !approx(snap.TickP99, 990*time.Microsecond) {
		t.Errorf("P99: got %v", snap.TickP99)
	}
	require.Equal(t, 1000*time.Microsecond, snap.TickMax)
	require.Equal(t, uint64(1000), snap.Ticks)
}
