package hostbridge

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// stubHost is a minimal single-goroutine Host for driving the bridge
// deterministically. Timers never fire on their own; tests invoke
// Bridge.tick (or fireTimerAt) themselves. Every Host method assumes the
// designated goroutine, which is exactly the discipline the bridge
// promises, so there is no locking here on purpose: the race detector
// flagging this stub means the bridge leaked a host call off-thread.
type stubHost struct {
	info       map[string]string
	prefs      map[string]string
	surfaces   map[SurfaceKey]*stubSurface
	hooks      map[uint64]*stubHook
	timers     map[uint64]func() bool
	lists      map[string]*stubList
	printed    []string
	commands   []string
	emitted    [][]string
	removed    []uint64
	timerOrder []uint64
	active     SurfaceKey
	nextTok    uint64
	installErr error
}

type stubSurface struct {
	info   map[string]string
	key    SurfaceKey
	output []string
	cmds   []string
}

type stubHook struct {
	fn       func(word, wordEol []string) Eat
	trigger  string
	help     string
	priority Priority
	kind     HookKind
}

func newStubHost() *stubHost {
	h := &stubHost{
		info:     map[string]string{"version": "2.16.2", "network": "libera", "nick": "gopher"},
		prefs:    map[string]string{},
		surfaces: map[SurfaceKey]*stubSurface{},
		hooks:    map[uint64]*stubHook{},
		timers:   map[uint64]func() bool{},
		lists:    map[string]*stubList{},
	}
	h.addSurface(SurfaceKey{Network: "libera", Name: "server"})
	h.addSurface(SurfaceKey{Network: "libera", Name: "#go-nuts"})
	h.active = SurfaceKey{Network: "libera", Name: "server"}
	return h
}

func (h *stubHost) token() uint64 {
	h.nextTok++
	return h.nextTok
}

func (h *stubHost) addSurface(key SurfaceKey) *stubSurface {
	s := &stubSurface{key: key, info: map[string]string{}}
	h.surfaces[key] = s
	return s
}

func (h *stubHost) Print(text string) error {
	h.printed = append(h.printed, text)
	return nil
}

func (h *stubHost) Command(cmd string) error {
	h.commands = append(h.commands, cmd)
	return nil
}

func (h *stubHost) Emit(event string, args ...string) error {
	h.emitted = append(h.emitted, append([]string{event}, args...))
	return nil
}

func (h *stubHost) Info(field string) (string, error) {
	v, ok := h.info[field]
	if !ok {
		return "", fmt.Errorf("stub: no info %q", field)
	}
	return v, nil
}

func (h *stubHost) FindSurface(key SurfaceKey) (SurfaceToken, error) {
	if key == (SurfaceKey{}) {
		key = h.active
	}
	s, ok := h.surfaces[key]
	if !ok {
		return nil, fmt.Errorf("stub: no surface %v", key)
	}
	return s, nil
}

func (h *stubHost) KeyOf(tok SurfaceToken) (SurfaceKey, error) {
	s, ok := tok.(*stubSurface)
	if !ok {
		return SurfaceKey{}, fmt.Errorf("stub: foreign surface token %T", tok)
	}
	return s.key, nil
}

func (h *stubHost) SurfacePrint(tok SurfaceToken, text string) error {
	s, ok := tok.(*stubSurface)
	if !ok {
		return fmt.Errorf("stub: foreign surface token %T", tok)
	}
	s.output = append(s.output, text)
	return nil
}

func (h *stubHost) SurfaceCommand(tok SurfaceToken, cmd string) error {
	s, ok := tok.(*stubSurface)
	if !ok {
		return fmt.Errorf("stub: foreign surface token %T", tok)
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (h *stubHost) SurfaceInfo(tok SurfaceToken, field string) (string, error) {
	s, ok := tok.(*stubSurface)
	if !ok {
		return "", fmt.Errorf("stub: foreign surface token %T", tok)
	}
	v, ok := s.info[field]
	if !ok {
		return "", fmt.Errorf("stub: no surface info %q", field)
	}
	return v, nil
}

func (h *stubHost) InstallHook(kind HookKind, trigger string, priority Priority, help string, fn func(word, wordEol []string) Eat) (HookToken, error) {
	if err := h.installErr; err != nil {
		h.installErr = nil
		return nil, err
	}
	tok := h.token()
	h.hooks[tok] = &stubHook{fn: fn, trigger: trigger, help: help, priority: priority, kind: kind}
	return tok, nil
}

func (h *stubHost) InstallTimer(every time.Duration, fn func() bool) (HookToken, error) {
	if err := h.installErr; err != nil {
		h.installErr = nil
		return nil, err
	}
	tok := h.token()
	h.timers[tok] = fn
	h.timerOrder = append(h.timerOrder, tok)
	return tok, nil
}

func (h *stubHost) RemoveHook(tok HookToken) error {
	id, ok := tok.(uint64)
	if !ok {
		return fmt.Errorf("stub: foreign hook token %T", tok)
	}
	delete(h.hooks, id)
	delete(h.timers, id)
	h.removed = append(h.removed, id)
	return nil
}

func (h *stubHost) OpenList(name string) (ListCursor, error) {
	l, ok := h.lists[name]
	if !ok {
		return nil, fmt.Errorf("stub: no list %q", name)
	}
	return &stubCursor{fields: l.fields, rows: l.rows, idx: -1}, nil
}

func (h *stubHost) SetPref(name, value string) error {
	h.prefs[name] = value
	return nil
}

func (h *stubHost) Pref(name string) (string, error) {
	v, ok := h.prefs[name]
	if !ok {
		return "", fmt.Errorf("stub: no preference %q", name)
	}
	return v, nil
}

func (h *stubHost) DelPref(name string) error {
	delete(h.prefs, name)
	return nil
}

func (h *stubHost) PrefNames() ([]string, error) {
	names := make([]string, 0, len(h.prefs))
	for name := range h.prefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// fire walks the installed hooks of one kind/trigger in priority order the
// way a host dispatch chain would: outcomes accumulate, and EatPlugin stops
// delivery to lower-priority callbacks.
func (h *stubHost) fire(kind HookKind, trigger string, word, wordEol []string) Eat {
	type cand struct {
		hk  *stubHook
		tok uint64
	}
	var cands []cand
	for tok, hk := range h.hooks {
		if hk.kind == kind && strings.EqualFold(hk.trigger, trigger) {
			cands = append(cands, cand{hk, tok})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].hk.priority != cands[j].hk.priority {
			return cands[i].hk.priority > cands[j].hk.priority
		}
		return cands[i].tok < cands[j].tok
	})
	var final Eat
	for _, c := range cands {
		final |= c.hk.fn(word, wordEol)
		if final&EatPlugin != 0 {
			break
		}
	}
	return final
}

// fireTimerAt invokes the i-th installed timer callback once (0 is always
// the bridge's own drain), dropping it when it reports done, the way a host
// timer would. Returns false if the timer was already removed.
func (h *stubHost) fireTimerAt(i int) bool {
	tok := h.timerOrder[i]
	fn, ok := h.timers[tok]
	if !ok {
		return false
	}
	if !fn() {
		delete(h.timers, tok)
		return false
	}
	return true
}

type stubList struct {
	fields []ListField
	rows   []map[string]any
}

type stubCursor struct {
	fields []ListField
	rows   []map[string]any
	idx    int
	closed bool
}

func (c *stubCursor) Fields() []ListField { return c.fields }

func (c *stubCursor) Next() bool {
	c.idx++
	return c.idx < len(c.rows)
}

func (c *stubCursor) Str(field string) (string, error) {
	v, ok := c.rows[c.idx][field].(string)
	if !ok {
		return "", fmt.Errorf("stub: list field %q is not a string", field)
	}
	return v, nil
}

func (c *stubCursor) Int(field string) (int, error) {
	v, ok := c.rows[c.idx][field].(int)
	if !ok {
		return 0, fmt.Errorf("stub: list field %q is not an int", field)
	}
	return v, nil
}

func (c *stubCursor) Time(field string) (time.Time, error) {
	v, ok := c.rows[c.idx][field].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("stub: list field %q is not a time", field)
	}
	return v, nil
}

func (c *stubCursor) Surface(field string) (SurfaceToken, error) {
	v, ok := c.rows[c.idx][field].(*stubSurface)
	if !ok {
		return nil, fmt.Errorf("stub: list field %q is not a surface", field)
	}
	return v, nil
}

func (c *stubCursor) Close() error {
	c.closed = true
	return nil
}
