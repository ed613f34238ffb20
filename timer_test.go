package hostbridge

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHookTimerValidation(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	if _, err := x.HookTimer(time.Second, nil, nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("expected ErrNilCallback, got %v", err)
	}
	if _, err := x.HookTimer(0, func(any) bool { return true }, nil); err == nil {
		t.Fatal("expected an error for a zero interval")
	}
	if _, err := x.HookTimer(-time.Second, func(any) bool { return true }, nil); err == nil {
		t.Fatal("expected an error for a negative interval")
	}
}

func TestHookTimerKeepsWhileTrue(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	fired := 0
	_, err = x.HookTimer(time.Second, func(data any) bool {
		fired++
		return fired < 3
	}, nil)
	require.NoError(t, err)

	// Index 0 is the drain; the user timer landed at 1.
	if !h.fireTimerAt(1) {
		t.Fatal("first firing should keep the timer")
	}
	if !h.fireTimerAt(1) {
		t.Fatal("second firing should keep the timer")
	}
	if h.fireTimerAt(1) {
		t.Fatal("third firing should remove the timer")
	}
	if fired != 3 {
		t.Fatalf("expected 3 firings, got %d", fired)
	}
	// Removed host-side, and no longer tracked for teardown.
	if h.fireTimerAt(1) {
		t.Fatal("removed timer fired again")
	}
	if fired != 3 {
		t.Fatalf("callback ran after removal, %d firings", fired)
	}
	if got := x.hooks.size(); got != 0 {
		t.Fatalf("self-removed timer still tracked, %d registrations", got)
	}
}

func TestHookTimerDataRoundTrip(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	var got any
	_, err = x.HookTimer(time.Second, func(data any) bool {
		got = data
		return false
	}, "tick payload")
	require.NoError(t, err)

	h.fireTimerAt(1)
	require.Equal(t, "tick payload", got)
}

func TestHookTimerOnce(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	fired := 0
	_, err = x.HookTimerOnce(time.Second, func(data any) { fired++ }, nil)
	require.NoError(t, err)

	if h.fireTimerAt(1) {
		t.Fatal("one-shot timer asked to stay installed")
	}
	h.fireTimerAt(1)
	if fired != 1 {
		t.Fatalf("expected exactly one firing, got %d", fired)
	}

	if _, err := x.HookTimerOnce(time.Second, nil, nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("expected ErrNilCallback, got %v", err)
	}
}

func TestHookTimerRevoke(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	reg, err := x.HookTimer(time.Second, func(data any) bool {
		t.Error("revoked timer fired")
		return true
	}, "armed")
	require.NoError(t, err)

	data, ok := reg.Revoke()
	if !ok || data != "armed" {
		t.Fatalf("Revoke: got (%v, %v)", data, ok)
	}
	if len(h.timers) != 1 { // just the drain
		t.Fatalf("expected the user timer removed from the host, %d timers remain", len(h.timers))
	}
	if h.fireTimerAt(1) {
		t.Fatal("revoked timer still installed")
	}
}

// TestHookTimerPanicRemoves pins the policy for panicking timer callbacks:
// the callback cannot say whether it wanted to continue, so the timer is
// removed instead of re-running a broken callback every interval.
func TestHookTimerPanicRemoves(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)
	defer func() { _ = x.Teardown() }()

	fired := 0
	reg, err := x.HookTimer(time.Second, func(data any) bool {
		fired++
		panic("broken timer")
	}, nil)
	require.NoError(t, err)

	if h.fireTimerAt(1) {
		t.Fatal("panicking timer asked to stay installed")
	}
	h.fireTimerAt(1)
	if fired != 1 {
		t.Fatalf("broken timer ran again, %d firings", fired)
	}
	if len(h.printed) != 1 || !strings.HasPrefix(h.printed[0], panicBanner+"timer: ") {
		t.Fatalf("expected a timer-scoped report, got %v", h.printed)
	}

	// The self-removal claimed the registration, so a later Revoke is a
	// clean no-op rather than a double host removal.
	if _, ok := reg.Revoke(); ok {
		t.Fatal("Revoke claimed a registration the panic removal already claimed")
	}
}

func TestHookTimerAfterTeardown(t *testing.T) {
	h := newStubHost()
	x, err := New(h)
	require.NoError(t, err)

	fired := false
	_, err = x.HookTimer(time.Second, func(data any) bool {
		fired = true
		return true
	}, nil)
	require.NoError(t, err)

	// Simulate a host missing the removal: keep the installed callback.
	var fn func() bool
	for tok, f := range h.timers {
		if tok != h.timerOrder[0] {
			fn = f
		}
	}
	require.NotNil(t, fn)

	require.NoError(t, x.Teardown())

	if fn() {
		t.Fatal("timer after teardown must report done")
	}
	if fired {
		t.Fatal("timer callback ran after teardown")
	}
}
