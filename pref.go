package hostbridge

import (
	"fmt"
	"strconv"
)

// SetPref stores a plugin preference. Thread-confined.
func (x *Bridge) SetPref(name, value string) error {
	if err := x.confined(); err != nil {
		return err
	}
	return x.host.SetPref(name, value)
}

// Pref returns a stored plugin preference. Thread-confined.
func (x *Bridge) Pref(name string) (string, error) {
	if err := x.confined(); err != nil {
		return ``, err
	}
	return x.host.Pref(name)
}

// DelPref removes a stored plugin preference. Thread-confined.
func (x *Bridge) DelPref(name string) error {
	if err := x.confined(); err != nil {
		return err
	}
	return x.host.DelPref(name)
}

// PrefNames lists the stored plugin preference names. Thread-confined.
func (x *Bridge) PrefNames() ([]string, error) {
	if err := x.confined(); err != nil {
		return nil, err
	}
	return x.host.PrefNames()
}

// SetPrefInt stores an integer plugin preference. The host's store is
// string-valued, so this is a formatting convenience over SetPref.
func (x *Bridge) SetPrefInt(name string, value int) error {
	return x.SetPref(name, strconv.Itoa(value))
}

// PrefInt returns a stored integer plugin preference.
func (x *Bridge) PrefInt(name string) (int, error) {
	s, err := x.Pref(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf(`hostbridge: preference %q is not an integer: %w`, name, err)
	}
	return v, nil
}

// SetPrefBool stores a boolean plugin preference.
func (x *Bridge) SetPrefBool(name string, value bool) error {
	return x.SetPref(name, strconv.FormatBool(value))
}

// PrefBool returns a stored boolean plugin preference.
func (x *Bridge) PrefBool(name string) (bool, error) {
	s, err := x.Pref(name)
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf(`hostbridge: preference %q is not a boolean: %w`, name, err)
	}
	return v, nil
}
