package hosttest

import (
	"errors"
	"sort"
	"strings"

	hostbridge "github.com/joeycumines/go-hostbridge"
)

// hookEntry is one installed hook. Entries are flagged rather than cut
// from the slice mid-dispatch, so a callback revoking its own hook never
// invalidates the iteration that is delivering to it.
type hookEntry struct {
	fn       func(word, wordEol []string) hostbridge.Eat
	trigger  string
	help     string
	id       uint64
	priority hostbridge.Priority
	kind     hostbridge.HookKind
	removed  bool
}

// InstallHook binds fn to the named trigger at the given priority.
func (h *Host) InstallHook(kind hostbridge.HookKind, trigger string, priority hostbridge.Priority, help string, fn func(word, wordEol []string) hostbridge.Eat) (hostbridge.HookToken, error) {
	h.confine(`InstallHook`)
	if fn == nil {
		return nil, errors.New(`hosttest: nil hook callback`)
	}
	e := &hookEntry{
		id:       h.token(),
		kind:     kind,
		trigger:  trigger,
		priority: priority,
		help:     help,
		fn:       fn,
	}
	h.hooks = append(h.hooks, e)
	return e.id, nil
}

// RemoveHook uninstalls a hook or timer. Removing an already-removed
// token is a no-op.
func (h *Host) RemoveHook(tok hostbridge.HookToken) error {
	h.confine(`RemoveHook`)
	id, ok := tok.(uint64)
	if !ok {
		return errors.New(`hosttest: foreign hook token`)
	}
	for _, e := range h.hooks {
		if e.id == id {
			e.removed = true
			return nil
		}
	}
	if t, ok := h.timers[id]; ok {
		delete(h.timers, id)
		close(t.stop)
	}
	return nil
}

// dispatch delivers one event to the matching hooks, highest priority
// first, stable within a priority. Outcomes accumulate bitwise; a hook
// eating the event for plugins stops delivery to the rest.
func (h *Host) dispatch(kind hostbridge.HookKind, trigger string, word, wordEol []string) hostbridge.Eat {
	var matched []*hookEntry
	for _, e := range h.hooks {
		if e.kind == kind && strings.EqualFold(e.trigger, trigger) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].priority > matched[j].priority
	})

	final := hostbridge.EatNone
	for _, e := range matched {
		if e.removed {
			continue
		}
		final |= e.fn(word, wordEol)
		if final&hostbridge.EatPlugin != 0 {
			break
		}
	}
	return final
}

// Command executes a host command line: the line is recorded, delivered
// to command hooks for its first word, and noted as unknown on the active
// surface unless a hook ate it.
func (h *Host) Command(cmd string) error {
	h.confine(`Command`)
	return h.command(cmd)
}

func (h *Host) command(line string) error {
	word, wordEol := splitWords(line)
	if len(word) == 0 {
		return errors.New(`hosttest: empty command`)
	}
	h.cmdlog = append(h.cmdlog, line)
	eat := h.dispatch(hostbridge.KindCommand, word[0], word, wordEol)
	if eat&hostbridge.EatHost == 0 {
		h.appendActive(`Unknown command. Try /help`)
	}
	return nil
}

// Emit raises a named text event: it is delivered to print hooks and then
// rendered to the active surface unless a hook ate it for the host.
func (h *Host) Emit(event string, args ...string) error {
	h.confine(`Emit`)
	return h.emit(event, args)
}

func (h *Host) emit(event string, args []string) error {
	word := append([]string(nil), args...)
	eat := h.dispatch(hostbridge.KindPrint, event, word, tailJoin(word))
	if eat&hostbridge.EatHost == 0 {
		h.appendActive("[" + event + "] " + strings.Join(args, " "))
	}
	return nil
}

// InjectCommand runs a command line as if the user typed it. Safe from
// any goroutine.
func (h *Host) InjectCommand(line string) error {
	var err error
	h.Do(func() {
		err = h.command(line)
	})
	return err
}

// InjectPrint raises a text event as if the host generated it. Safe from
// any goroutine.
func (h *Host) InjectPrint(event string, args ...string) error {
	var err error
	h.Do(func() {
		err = h.emit(event, args)
	})
	return err
}

// InjectServer delivers a raw protocol line to server hooks for the named
// event. Safe from any goroutine.
func (h *Host) InjectServer(event, line string) hostbridge.Eat {
	var eat hostbridge.Eat
	h.Do(func() {
		word, wordEol := splitWords(line)
		eat = h.dispatch(hostbridge.KindServer, event, word, wordEol)
	})
	return eat
}

// Commands returns a copy of every command line executed so far. Safe
// from any goroutine.
func (h *Host) Commands() []string {
	var out []string
	h.Do(func() {
		out = append(out, h.cmdlog...)
	})
	return out
}

// HookCount reports how many hooks are installed and not yet removed.
// Safe from any goroutine.
func (h *Host) HookCount() int {
	var n int
	h.Do(func() {
		for _, e := range h.hooks {
			if !e.removed {
				n++
			}
		}
		n += len(h.timers)
	})
	return n
}

// splitWords splits a line on runs of spaces, preserving the original
// text in the tail-join form: wordEol[i] is the line from word i onward,
// spacing intact.
func splitWords(line string) (word, wordEol []string) {
	for i := 0; i < len(line); {
		if line[i] == ' ' {
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' {
			j++
		}
		word = append(word, line[i:j])
		wordEol = append(wordEol, line[i:])
		i = j
	}
	return
}

// tailJoin derives the tail-join form from a word list alone, used for
// events that never had one original line.
func tailJoin(word []string) []string {
	out := make([]string, len(word))
	for i := range word {
		out[i] = strings.Join(word[i:], " ")
	}
	return out
}
