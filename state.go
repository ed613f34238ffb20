package hostbridge

import (
	"sync/atomic"
)

// State represents the lifecycle of a Bridge.
//
// State machine:
//
//	StateActive (0) → StateTearingDown (1)  [Teardown()]
//	StateTearingDown (1) → StateTornDown (2) [teardown complete]
//	StateTornDown (2) → (terminal)
//
// A Bridge is live from New until Teardown; there is no restart.
type State uint64

const (
	// StateActive indicates the bridge is attached to the host and
	// accepting work.
	StateActive State = 0
	// StateTearingDown indicates Teardown has started: registrations are
	// being revoked and pending results failed.
	StateTearingDown State = 1
	// StateTornDown indicates teardown completed; all operations are
	// rejected with ErrTornDown.
	StateTornDown State = 2
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateTearingDown:
		return "TearingDown"
	case StateTornDown:
		return "TornDown"
	default:
		return "Unknown"
	}
}

// lifecycle is a lock-free state holder. Transitions into TearingDown use
// CAS so exactly one caller performs teardown; the final store to TornDown
// is unconditional because TearingDown has a single owner.
type lifecycle struct {
	v atomic.Uint64
}

// Load returns the current state atomically.
func (s *lifecycle) Load() State {
	return State(s.v.Load())
}

// Store atomically stores a new state.
func (s *lifecycle) Store(state State) {
	s.v.Store(uint64(state))
}

// TryTransition attempts to atomically transition from one state to
// another, returning true on success.
func (s *lifecycle) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// CanAcceptWork returns true if the bridge can accept new work.
func (s *lifecycle) CanAcceptWork() bool {
	return s.Load() == StateActive
}
