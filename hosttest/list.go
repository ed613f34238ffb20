package hosttest

import (
	"fmt"
	"time"

	hostbridge "github.com/joeycumines/go-hostbridge"
)

// listDef is one registered host list: a column schema plus rows of
// field-name to value, where values are string, int, time.Time, or
// hostbridge.SurfaceKey per the column kind.
type listDef struct {
	fields []hostbridge.ListField
	rows   []map[string]any
}

// SetList registers a host list for OpenList to serve. Safe from any
// goroutine. The "channels" list need not be registered; it is derived
// from the live surfaces.
func (h *Host) SetList(name string, fields []hostbridge.ListField, rows []map[string]any) {
	h.Do(func() {
		h.lists[name] = &listDef{fields: fields, rows: rows}
	})
}

// OpenList opens a cursor over the named host list.
func (h *Host) OpenList(name string) (hostbridge.ListCursor, error) {
	h.confine(`OpenList`)
	if name == "channels" {
		return h.channelsCursor(), nil
	}
	def, ok := h.lists[name]
	if !ok {
		return nil, fmt.Errorf(`hosttest: no list %q`, name)
	}
	rows := make([]map[string]any, len(def.rows))
	copy(rows, def.rows)
	return &cursor{h: h, fields: def.fields, rows: rows, idx: -1}, nil
}

// channelsCursor derives the canonical surface list, one row per live
// surface in creation order.
func (h *Host) channelsCursor() *cursor {
	fields := []hostbridge.ListField{
		{Name: "network", Kind: hostbridge.FieldStr},
		{Name: "channel", Kind: hostbridge.FieldStr},
		{Name: "context", Kind: hostbridge.FieldSurface},
	}
	var rows []map[string]any
	for _, key := range h.order {
		s, ok := h.surfaces[key]
		if !ok {
			continue
		}
		rows = append(rows, map[string]any{
			"network": key.Network,
			"channel": key.Name,
			"context": s,
		})
	}
	return &cursor{h: h, fields: fields, rows: rows, idx: -1}
}

// cursor reads on the host goroutine only, like every other host entry
// point, so touching the owning Host's state from it is safe.
type cursor struct {
	h      *Host
	fields []hostbridge.ListField
	rows   []map[string]any
	idx    int
}

func (c *cursor) Fields() []hostbridge.ListField {
	return c.fields
}

func (c *cursor) Next() bool {
	if c.idx+1 >= len(c.rows) {
		return false
	}
	c.idx++
	return true
}

func (c *cursor) Str(field string) (string, error) {
	v, err := c.value(field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf(`hosttest: list field %q is %T, not string`, field, v)
	}
	return s, nil
}

func (c *cursor) Int(field string) (int, error) {
	v, err := c.value(field)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf(`hosttest: list field %q is %T, not int`, field, v)
	}
	return n, nil
}

func (c *cursor) Time(field string) (time.Time, error) {
	v, err := c.value(field)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf(`hosttest: list field %q is %T, not time.Time`, field, v)
	}
	return t, nil
}

func (c *cursor) Surface(field string) (hostbridge.SurfaceToken, error) {
	v, err := c.value(field)
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case *surface:
		return s, nil
	case hostbridge.SurfaceKey:
		if live, ok := c.h.surfaces[s]; ok {
			return live, nil
		}
		return nil, fmt.Errorf(`hosttest: list row references unknown surface %v`, s)
	default:
		return nil, fmt.Errorf(`hosttest: list field %q is %T, not a surface`, field, v)
	}
}

func (c *cursor) Close() error {
	c.rows = nil
	c.idx = -1
	return nil
}

func (c *cursor) value(field string) (any, error) {
	if c.idx < 0 || c.idx >= len(c.rows) {
		return nil, fmt.Errorf(`hosttest: cursor not positioned on a row`)
	}
	v, ok := c.rows[c.idx][field]
	if !ok {
		return nil, fmt.Errorf(`hosttest: no list field %q`, field)
	}
	return v, nil
}
