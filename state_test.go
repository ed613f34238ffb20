package hostbridge

import (
	"testing"
)

func TestStateString(t *testing.T) {
	for _, tc := range []struct {
		want  string
		state State
	}{
		{"Active", StateActive},
		{"TearingDown", StateTearingDown},
		{"TornDown", StateTornDown},
		{"Unknown", State(99)},
	} {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("%d: got %q, want %q", uint64(tc.state), got, tc.want)
		}
	}
}

func TestLifecycleTransitions(t *testing.T) {
	var s lifecycle

	if got := s.Load(); got != StateActive {
		t.Fatalf("zero value: got %v", got)
	}
	if !s.CanAcceptWork() {
		t.Fatal("active lifecycle should accept work")
	}

	if !s.TryTransition(StateActive, StateTearingDown) {
		t.Fatal("first transition rejected")
	}
	if s.TryTransition(StateActive, StateTearingDown) {
		t.Fatal("second transition from a stale state accepted")
	}
	if s.CanAcceptWork() {
		t.Fatal("tearing-down lifecycle should not accept work")
	}

	s.Store(StateTornDown)
	if got := s.Load(); got != StateTornDown {
		t.Fatalf("got %v", got)
	}
}
