package hosttest

import (
	"fmt"

	hostbridge "github.com/joeycumines/go-hostbridge"
)

// surface is one simulated window or buffer. Output accumulates every
// printed line for later assertion.
type surface struct {
	info   map[string]string
	key    hostbridge.SurfaceKey
	output []string
}

// FindSurface resolves key to a surface token. The zero key resolves to
// the active surface.
func (h *Host) FindSurface(key hostbridge.SurfaceKey) (hostbridge.SurfaceToken, error) {
	h.confine(`FindSurface`)
	if key == (hostbridge.SurfaceKey{}) {
		key = h.active
	}
	s, ok := h.surfaces[key]
	if !ok {
		return nil, fmt.Errorf(`hosttest: no surface %v`, key)
	}
	return s, nil
}

// KeyOf returns the identifying data for a surface token.
func (h *Host) KeyOf(tok hostbridge.SurfaceToken) (hostbridge.SurfaceKey, error) {
	h.confine(`KeyOf`)
	s, err := h.surface(tok)
	if err != nil {
		return hostbridge.SurfaceKey{}, err
	}
	return s.key, nil
}

// SurfacePrint writes text to the given surface.
func (h *Host) SurfacePrint(tok hostbridge.SurfaceToken, text string) error {
	h.confine(`SurfacePrint`)
	s, err := h.surface(tok)
	if err != nil {
		return err
	}
	s.output = append(s.output, text)
	return nil
}

// SurfaceCommand executes a command line with the given surface active,
// restoring the previously active surface afterwards.
func (h *Host) SurfaceCommand(tok hostbridge.SurfaceToken, cmd string) error {
	h.confine(`SurfaceCommand`)
	s, err := h.surface(tok)
	if err != nil {
		return err
	}
	prev := h.active
	h.active = s.key
	defer func() { h.active = prev }()
	return h.command(cmd)
}

// SurfaceInfo returns the named info field of the given surface.
func (h *Host) SurfaceInfo(tok hostbridge.SurfaceToken, field string) (string, error) {
	h.confine(`SurfaceInfo`)
	s, err := h.surface(tok)
	if err != nil {
		return "", err
	}
	switch field {
	case "network":
		return s.key.Network, nil
	case "channel":
		return s.key.Name, nil
	}
	v, ok := s.info[field]
	if !ok {
		return "", fmt.Errorf(`hosttest: surface %v has no info field %q`, s.key, field)
	}
	return v, nil
}

// surface validates a token, rejecting tokens for surfaces that have been
// dropped since the token was issued.
func (h *Host) surface(tok hostbridge.SurfaceToken) (*surface, error) {
	s, ok := tok.(*surface)
	if !ok {
		return nil, fmt.Errorf(`hosttest: foreign surface token %T`, tok)
	}
	if h.surfaces[s.key] != s {
		return nil, fmt.Errorf(`hosttest: stale token for surface %v`, s.key)
	}
	return s, nil
}

// Print writes text to the active surface.
func (h *Host) Print(text string) error {
	h.confine(`Print`)
	h.appendActive(text)
	return nil
}

func (h *Host) appendActive(text string) {
	if s, ok := h.surfaces[h.active]; ok {
		s.output = append(s.output, text)
	}
}

// AddSurface creates a surface. Safe from any goroutine; creating an
// existing surface is a no-op.
func (h *Host) AddSurface(key hostbridge.SurfaceKey) {
	h.Do(func() {
		if _, ok := h.surfaces[key]; ok {
			return
		}
		h.surfaces[key] = &surface{key: key, info: map[string]string{}}
		h.order = append(h.order, key)
	})
}

// DropSurface removes a surface, invalidating outstanding tokens for it.
// The active surface falls back to the default when dropped. Safe from
// any goroutine.
func (h *Host) DropSurface(key hostbridge.SurfaceKey) {
	h.Do(func() {
		delete(h.surfaces, key)
		for i, k := range h.order {
			if k == key {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
		if h.active == key {
			h.active = DefaultSurface
		}
	})
}

// SetActive switches the active surface. Safe from any goroutine.
func (h *Host) SetActive(key hostbridge.SurfaceKey) error {
	var err error
	h.Do(func() {
		if _, ok := h.surfaces[key]; !ok {
			err = fmt.Errorf(`hosttest: no surface %v`, key)
			return
		}
		h.active = key
	})
	return err
}

// SetSurfaceInfo sets a per-surface info field. Safe from any goroutine.
func (h *Host) SetSurfaceInfo(key hostbridge.SurfaceKey, field, value string) error {
	var err error
	h.Do(func() {
		s, ok := h.surfaces[key]
		if !ok {
			err = fmt.Errorf(`hosttest: no surface %v`, key)
			return
		}
		s.info[field] = value
	})
	return err
}

// Output returns a copy of everything printed to the given surface. Safe
// from any goroutine.
func (h *Host) Output(key hostbridge.SurfaceKey) []string {
	var out []string
	h.Do(func() {
		if s, ok := h.surfaces[key]; ok {
			out = append(out, s.output...)
		}
	})
	return out
}

// ActiveOutput returns a copy of everything printed to the currently
// active surface. Safe from any goroutine.
func (h *Host) ActiveOutput() []string {
	var out []string
	h.Do(func() {
		if s, ok := h.surfaces[h.active]; ok {
			out = append(out, s.output...)
		}
	})
	return out
}
