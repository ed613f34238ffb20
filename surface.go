package hostbridge

import (
	"fmt"
)

// Surface is a thread-confined handle to one live host surface. It wraps
// the host's own token, so operations are direct calls with no lookup, but
// every operation rejects use off the designated goroutine with an
// *OffThreadError before the token is touched. The handle stays valid
// until the host invalidates the underlying surface; a handle that must
// cross goroutines is converted with Detach first.
type Surface struct {
	x   *Bridge
	tok SurfaceToken
	key SurfaceKey
}

// FindSurface resolves key to a live surface handle. Thread-confined.
func (x *Bridge) FindSurface(key SurfaceKey) (*Surface, error) {
	if err := x.confined(); err != nil {
		return nil, err
	}
	tok, err := x.host.FindSurface(key)
	if err != nil {
		return nil, &ResolutionError{Key: key, Err: err}
	}
	return &Surface{x: x, tok: tok, key: key}, nil
}

// ActiveSurface returns a handle to the currently active surface.
// Thread-confined.
func (x *Bridge) ActiveSurface() (*Surface, error) {
	if err := x.confined(); err != nil {
		return nil, err
	}
	tok, err := x.host.FindSurface(SurfaceKey{})
	if err != nil {
		return nil, &ResolutionError{Err: err}
	}
	key, err := x.host.KeyOf(tok)
	if err != nil {
		return nil, fmt.Errorf(`hostbridge: identifying active surface: %w`, err)
	}
	return &Surface{x: x, tok: tok, key: key}, nil
}

// Key returns the surface's identifying data, captured at acquisition.
func (s *Surface) Key() SurfaceKey { return s.key }

// Print writes text to the surface. Thread-confined.
func (s *Surface) Print(text string) error {
	if err := s.x.confined(); err != nil {
		return err
	}
	return s.x.host.SurfacePrint(s.tok, text)
}

// Command executes a host command line in the surface. Thread-confined.
func (s *Surface) Command(cmd string) error {
	if err := s.x.confined(); err != nil {
		return err
	}
	return s.x.host.SurfaceCommand(s.tok, cmd)
}

// Info returns the named info field of the surface. Thread-confined.
func (s *Surface) Info(field string) (string, error) {
	if err := s.x.confined(); err != nil {
		return ``, err
	}
	return s.x.host.SurfaceInfo(s.tok, field)
}

// Detach converts the handle into a form any goroutine may use. Only the
// identifying data crosses; the host token stays behind.
func (s *Surface) Detach() RemoteSurface {
	return RemoteSurface{x: s.x, key: s.key}
}

// RemoteSurface is a cross-goroutine handle to one host surface. It holds
// identifying data only, never a host token: each operation is submitted
// to the designated goroutine, where the identity is re-resolved before
// use, yielding a *ResolutionError if the surface is gone by then.
//
// The zero value is not useful; obtain one from Bridge.RemoteSurface or
// Surface.Detach.
type RemoteSurface struct {
	x   *Bridge
	key SurfaceKey
}

// RemoteSurface wraps key in a cross-goroutine surface handle. No
// resolution happens here, so this works from any goroutine and cannot
// fail; a key that never resolves surfaces as a *ResolutionError from the
// handle's operations instead.
func (x *Bridge) RemoteSurface(key SurfaceKey) RemoteSurface {
	return RemoteSurface{x: x, key: key}
}

// Key returns the identifying data the handle carries.
func (s RemoteSurface) Key() SurfaceKey { return s.key }

// resolve runs on the designated goroutine.
func (s RemoteSurface) resolve() (SurfaceToken, error) {
	tok, err := s.x.host.FindSurface(s.key)
	if err != nil {
		return nil, &ResolutionError{Key: s.key, Err: err}
	}
	return tok, nil
}

// Print writes text to the surface, resolving its identity at execution
// time on the designated goroutine.
func (s RemoteSurface) Print(text string) *AsyncResult[struct{}] {
	return Submit(s.x, func() (struct{}, error) {
		tok, err := s.resolve()
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.x.host.SurfacePrint(tok, text)
	})
}

// Command executes a host command line in the surface, resolving its
// identity at execution time on the designated goroutine.
func (s RemoteSurface) Command(cmd string) *AsyncResult[struct{}] {
	return Submit(s.x, func() (struct{}, error) {
		tok, err := s.resolve()
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.x.host.SurfaceCommand(tok, cmd)
	})
}

// Info returns the named info field of the surface, resolving its identity
// at execution time on the designated goroutine.
func (s RemoteSurface) Info(field string) *AsyncResult[string] {
	return Submit(s.x, func() (string, error) {
		tok, err := s.resolve()
		if err != nil {
			return ``, err
		}
		return s.x.host.SurfaceInfo(tok, field)
	})
}

// Attach re-resolves the handle into a thread-confined one. Thread-confined
// itself, as the returned handle would be unusable anywhere else.
func (s RemoteSurface) Attach() (*Surface, error) {
	return s.x.FindSurface(s.key)
}
