package hosttest

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The preference store is one JSON document, mirroring a host that
// persists plugin preferences to a config file. Preference names are used
// as JSON paths, so dotted names nest.

// SetPref stores a plugin preference.
func (h *Host) SetPref(name, value string) error {
	h.confine(`SetPref`)
	doc, err := sjson.Set(h.prefs, name, value)
	if err != nil {
		return fmt.Errorf(`hosttest: storing preference %q: %w`, name, err)
	}
	h.prefs = doc
	return nil
}

// Pref returns a stored plugin preference.
func (h *Host) Pref(name string) (string, error) {
	h.confine(`Pref`)
	v := gjson.Get(h.prefs, name)
	if !v.Exists() {
		return "", fmt.Errorf(`hosttest: no preference %q`, name)
	}
	return v.String(), nil
}

// DelPref removes a stored plugin preference.
func (h *Host) DelPref(name string) error {
	h.confine(`DelPref`)
	doc, err := sjson.Delete(h.prefs, name)
	if err != nil {
		return fmt.Errorf(`hosttest: deleting preference %q: %w`, name, err)
	}
	h.prefs = doc
	return nil
}

// PrefNames lists the stored top-level preference names, sorted.
func (h *Host) PrefNames() ([]string, error) {
	h.confine(`PrefNames`)
	var names []string
	gjson.Parse(h.prefs).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	sort.Strings(names)
	return names, nil
}

// Prefs returns the raw preference document. Safe from any goroutine.
func (h *Host) Prefs() string {
	var doc string
	h.Do(func() {
		doc = h.prefs
	})
	return doc
}
