package hosttest

import (
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestPrefStoreRoundTrip(t *testing.T) {
	h := New()
	defer h.Close()

	h.Do(func() {
		if err := h.SetPref("greeting", "hello"); err != nil {
			t.Errorf("SetPref: %v", err)
		}
		if err := h.SetPref("farewell", "bye"); err != nil {
			t.Errorf("SetPref: %v", err)
		}
		if v, err := h.Pref("greeting"); err != nil || v != "hello" {
			t.Errorf("Pref(greeting) = %q, %v", v, err)
		}
		names, err := h.PrefNames()
		if err != nil {
			t.Errorf("PrefNames: %v", err)
		}
		if want := []string{"farewell", "greeting"}; !reflect.DeepEqual(names, want) {
			t.Errorf("PrefNames = %q, want %q", names, want)
		}
		if err := h.DelPref("greeting"); err != nil {
			t.Errorf("DelPref: %v", err)
		}
		if _, err := h.Pref("greeting"); err == nil {
			t.Error("deleted preference still readable")
		}
	})
}

func TestPrefDottedNamesNest(t *testing.T) {
	h := New()
	defer h.Close()

	h.Do(func() {
		if err := h.SetPref("auth.token", "s3cret"); err != nil {
			t.Errorf("SetPref: %v", err)
		}
	})

	doc := h.Prefs()
	if got := gjson.Get(doc, "auth.token").String(); got != "s3cret" {
		t.Fatalf("auth.token = %q in %s", got, doc)
	}
	if !gjson.Get(doc, "auth").IsObject() {
		t.Fatalf("dotted name did not nest: %s", doc)
	}
}

func TestPrefMissing(t *testing.T) {
	h := New()
	defer h.Close()

	h.Do(func() {
		if _, err := h.Pref("never set"); err == nil {
			t.Error("missing preference did not fail")
		}
	})
}
