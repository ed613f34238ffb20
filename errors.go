package hostbridge

import (
	"errors"
	"fmt"
)

var (
	// ErrTornDown is returned by operations attempted after Teardown, and is
	// the failure assigned to any AsyncResult still pending when the bridge
	// is torn down.
	ErrTornDown = errors.New("hostbridge: bridge torn down")

	// ErrOffThread is matched (via errors.Is) by every OffThreadError.
	ErrOffThread = errors.New("hostbridge: confined operation off the designated goroutine")

	// ErrNoSuchSurface is matched (via errors.Is) by every ResolutionError.
	ErrNoSuchSurface = errors.New("hostbridge: surface identity did not resolve")

	// ErrNilHost is returned by New when no host is supplied.
	ErrNilHost = errors.New("hostbridge: nil host")

	// ErrNilCallback is returned by hook installation when no callback is supplied.
	ErrNilCallback = errors.New("hostbridge: nil callback")

	// ErrGoexit is the panic value assigned when a guarded callback exits via
	// runtime.Goexit instead of returning. The designated goroutine is lost
	// either way, but pending results still settle.
	ErrGoexit = errors.New("hostbridge: callback exited via runtime.Goexit")
)

// OffThreadError reports a thread-confined operation attempted from a
// goroutine other than the designated one. The offending call is rejected
// before any host state is touched.
type OffThreadError struct {
	// Designated is the id of the goroutine the host drives.
	Designated uint64
	// Caller is the id of the goroutine that made the call.
	Caller uint64
}

// Error implements the error interface.
func (e *OffThreadError) Error() string {
	return fmt.Sprintf("hostbridge: confined operation on goroutine %d, designated goroutine is %d", e.Caller, e.Designated)
}

// Is reports whether target is [ErrOffThread], so callers can match any
// off-thread rejection without caring about the goroutine ids.
func (e *OffThreadError) Is(target error) bool {
	return target == ErrOffThread
}

// ResolutionError reports that a surface identity did not resolve to a
// live host resource at execution time.
type ResolutionError struct {
	// Err is the host's resolution failure, when it reported one.
	Err error
	Key SurfaceKey
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("hostbridge: no surface for %q on %q", e.Key.Name, e.Key.Network)
}

// Is reports whether target is [ErrNoSuchSurface].
func (e *ResolutionError) Is(target error) bool {
	return target == ErrNoSuchSurface
}

// Unwrap returns the host's resolution failure, if any.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value recovered at a host callback boundary.
// Stack is non-nil only when the bridge was configured with stack capture,
// see [WithStackTraces].
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("hostbridge: callback panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As] for error matching
// through the cause chain. If the panic value is not an error, returns nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
