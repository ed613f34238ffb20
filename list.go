package hostbridge

import (
	"fmt"
	"time"
)

// ListRow is one snapshotted row of a host list. Rows are plain data: any
// surface-reference columns are captured as identifying keys rather than
// live tokens, so a snapshot may be carried to and read from any
// goroutine, long after the underlying cursor is gone.
type ListRow struct {
	strs  map[string]string
	ints  map[string]int
	times map[string]time.Time
	surfs map[string]SurfaceKey
}

// Str returns the named string field.
func (r ListRow) Str(field string) (string, bool) {
	v, ok := r.strs[field]
	return v, ok
}

// Int returns the named integer field.
func (r ListRow) Int(field string) (int, bool) {
	v, ok := r.ints[field]
	return v, ok
}

// Time returns the named timestamp field.
func (r ListRow) Time(field string) (time.Time, bool) {
	v, ok := r.times[field]
	return v, ok
}

// Surface returns the named surface-reference field as identifying data,
// suitable for Bridge.RemoteSurface.
func (r ListRow) Surface(field string) (SurfaceKey, bool) {
	v, ok := r.surfs[field]
	return v, ok
}

// List snapshots the named host list. Thread-confined; the returned rows
// are not. Goroutines that cannot get to the designated one compose with
// the dispatcher, e.g.
//
//	rows, err := hostbridge.Submit(x, func() ([]hostbridge.ListRow, error) {
//		return x.List(`channels`)
//	}).Get()
func (x *Bridge) List(name string) ([]ListRow, error) {
	if err := x.confined(); err != nil {
		return nil, err
	}

	cur, err := x.host.OpenList(name)
	if err != nil {
		return nil, fmt.Errorf(`hostbridge: opening list %q: %w`, name, err)
	}
	defer func() {
		_ = cur.Close()
	}()

	fields := cur.Fields()
	var rows []ListRow
	for cur.Next() {
		row := ListRow{
			strs:  make(map[string]string),
			ints:  make(map[string]int),
			times: make(map[string]time.Time),
			surfs: make(map[string]SurfaceKey),
		}
		for _, f := range fields {
			switch f.Kind {
			case FieldStr:
				if v, err := cur.Str(f.Name); err == nil {
					row.strs[f.Name] = v
				}
			case FieldInt:
				if v, err := cur.Int(f.Name); err == nil {
					row.ints[f.Name] = v
				}
			case FieldTime:
				if v, err := cur.Time(f.Name); err == nil {
					row.times[f.Name] = v
				}
			case FieldSurface:
				tok, err := cur.Surface(f.Name)
				if err != nil {
					continue
				}
				if key, err := x.host.KeyOf(tok); err == nil {
					row.surfs[f.Name] = key
				}
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
