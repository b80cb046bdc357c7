package ui

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/bnema/wayosk/internal/keymap"
)

var symText = map[keymap.KeySym]string{
	"space": " ", "Return": "\n", "Tab": "\t",
}

// Recorder stands in for the compositor: it implements the virtual keyboard
// and input-method requests, logs every call and applies their effect to a
// simulated text field.
type Recorder struct {
	mu      sync.Mutex
	max     int
	lines   []string
	set     *keymap.Set
	idx     int
	text    string
	pending string
	del     uint32
	dirty   bool
}

// NewRecorder keeps at most max log lines.
func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = 8
	}
	return &Recorder{max: max}
}

func (r *Recorder) logf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
	if len(r.lines) > r.max {
		r.lines = r.lines[len(r.lines)-r.max:]
	}
}

// SetKeymap records a keymap upload.
func (r *Recorder) SetKeymap(set *keymap.Set, idx int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set, r.idx = set, idx
	r.logf("vk.keymap #%d", idx)
	return nil
}

// Key records a raw key and types it into the text field on press.
func (r *Recorder) Key(time, code uint32, pressed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sym := r.symFor(code)
	state := "released"
	if pressed {
		state = "pressed"
	}
	r.logf("vk.key %d %s (%s) t=%d", code, state, sym, time)
	if !pressed {
		return nil
	}

	switch {
	case sym == "BackSpace":
		if _, size := utf8.DecodeLastRuneInString(r.text); size > 0 {
			r.text = r.text[:len(r.text)-size]
			r.dirty = true
		}
	case len(sym) == 1:
		r.text += string(sym)
		r.dirty = true
	default:
		if s, ok := symText[sym]; ok {
			r.text += s
			r.dirty = true
		} else if s, ok := keymap.TextFor(sym); ok {
			r.text += s
			r.dirty = true
		}
	}
	return nil
}

// Modifiers records a modifier mask.
func (r *Recorder) Modifiers(depressed uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logf("vk.modifiers 0x%x", depressed)
	return nil
}

// CommitString queues text for the next commit.
func (r *Recorder) CommitString(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logf("im.commit_string %q", text)
	r.pending += text
	return nil
}

// DeleteSurroundingText queues a deletion for the next commit.
func (r *Recorder) DeleteSurroundingText(before, after uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logf("im.delete_surrounding_text %d %d", before, after)
	r.del += before
	return nil
}

// Commit applies queued input-method changes.
func (r *Recorder) Commit(serial uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logf("im.commit %d", serial)
	if int(r.del) > len(r.text) {
		r.del = uint32(len(r.text))
	}
	r.text = r.text[:len(r.text)-int(r.del)] + r.pending
	r.pending, r.del = "", 0
	r.dirty = true
	return nil
}

// Destroy records the input method going away.
func (r *Recorder) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logf("im.destroy")
}

// Lines returns the recorded calls, oldest first.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Text returns the simulated text field content.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

// TakeDirty reports whether the text changed since the last call.
func (r *Recorder) TakeDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.dirty
	r.dirty = false
	return d
}

// Reset clears the text field.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text, r.pending, r.del = "", "", 0
	r.dirty = true
}

func (r *Recorder) symFor(code uint32) keymap.KeySym {
	if r.set != nil {
		for sym, kc := range r.set.Codes {
			if kc.Code == code && kc.KeymapIdx == r.idx {
				return sym
			}
		}
	}
	return "?"
}
