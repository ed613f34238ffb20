package hostbridge

import (
	"errors"
	"testing"
)

func TestResultTryGet(t *testing.T) {
	res := newResult[string]()

	if _, _, settled := res.TryGet(); settled {
		t.Fatal("TryGet on a pending result reported settled")
	}
	if got := res.State(); got != Pending {
		t.Fatalf("expected Pending, got %v", got)
	}

	res.set("value")

	v, err, settled := res.TryGet()
	if !settled || err != nil || v != "value" {
		t.Fatalf("TryGet after set: %q %v %v", v, err, settled)
	}
}

func TestResultSingleAssignment(t *testing.T) {
	res := newResult[int]()

	if !res.set(1) {
		t.Fatal("first set rejected")
	}
	if res.set(2) {
		t.Fatal("second set accepted")
	}
	if res.fail(errors.New("late")) {
		t.Fatal("fail after set accepted")
	}

	v, err := res.Get()
	if err != nil || v != 1 {
		t.Fatalf("expected the first value to stick, got %d %v", v, err)
	}
}

func TestResultFailWins(t *testing.T) {
	res := newResult[int]()
	boom := errors.New("boom")

	if !res.fail(boom) {
		t.Fatal("first fail rejected")
	}
	if res.set(1) {
		t.Fatal("set after fail accepted")
	}

	if _, err := res.Get(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := res.State(); got != Failed {
		t.Fatalf("expected Failed, got %v", got)
	}
}

func TestResultDoneChannel(t *testing.T) {
	res := newResult[int]()

	select {
	case <-res.Done():
		t.Fatal("Done closed before settlement")
	default:
	}

	res.set(5)

	select {
	case <-res.Done():
	default:
		t.Fatal("Done not closed after settlement")
	}
}

func TestResultStateString(t *testing.T) {
	for _, tc := range []struct {
		want  string
		state ResultState
	}{
		{"Pending", Pending},
		{"Ready", Ready},
		{"Failed", Failed},
		{"Unknown", ResultState(99)},
	} {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("%d: got %q, want %q", int(tc.state), got, tc.want)
		}
	}
}
