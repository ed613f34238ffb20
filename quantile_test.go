package hostbridge

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestQuantileSetAgainstExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := newQuantileSet(0.50, 0.90, 0.99)

	const n = 10000
	samples := make([]float64, n)
	for i := range samples {
		v := rng.Float64() * 1000
		samples[i] = v
		s.observe(v)
	}
	sort.Float64s(samples)

	for i, p := range []float64{0.50, 0.90, 0.99} {
		got := s.quantile(i)
		want := samples[int(p*float64(n-1))]
		// The streaming estimate holds five markers, not the samples;
		// within 2.5% of the value range is plenty for instrumentation.
		if math.Abs(got-want) > 25 {
			t.Errorf("p%.0f: got %.2f, want %.2f", p*100, got, want)
		}
	}

	if got := s.maximum(); got != samples[n-1] {
		t.Errorf("maximum: got %.2f, want %.2f", got, samples[n-1])
	}
	if got := s.mean(); math.Abs(got-500) > 25 {
		t.Errorf("mean: got %.2f, want ~500", got)
	}
}

func TestQuantileSetFewSamples(t *testing.T) {
	s := newQuantileSet(0.5)

	if got := s.quantile(0); got != 0 {
		t.Fatalf("empty set: got %v", got)
	}
	if got := s.maximum(); got != 0 {
		t.Fatalf("empty maximum: got %v", got)
	}
	if got := s.mean(); got != 0 {
		t.Fatalf("empty mean: got %v", got)
	}

	// Under five observations the estimate reads the sorted sample itself.
	for _, v := range []float64{30, 10, 20} {
		s.observe(v)
	}
	if got := s.quantile(0); got != 20 {
		t.Fatalf("median of three: got %v, want 20", got)
	}
	if got := s.maximum(); got != 30 {
		t.Fatalf("maximum: got %v, want 30", got)
	}
	if got := s.mean(); got != 20 {
		t.Fatalf("mean: got %v, want 20", got)
	}
}

func TestQuantileSetOutOfRange(t *testing.T) {
	s := newQuantileSet(0.5)
	s.observe(1)
	if got := s.quantile(-1); got != 0 {
		t.Fatalf("negative index: got %v", got)
	}
	if got := s.quantile(1); got != 0 {
		t.Fatalf("index past the tracked set: got %v", got)
	}
}

func TestP2MarkerClampedProbability(t *testing.T) {
	lo := newP2Marker(-0.5)
	hi := newP2Marker(1.5)
	for i := 1; i <= 100; i++ {
		lo.observe(float64(i))
		hi.observe(float64(i))
	}
	if got := lo.estimate(); got > 10 {
		t.Errorf("p clamped to 0 should track the low end, got %v", got)
	}
	if got := hi.estimate(); got < 90 {
		t.Errorf("p clamped to 1 should track the high end, got %v", got)
	}
}
