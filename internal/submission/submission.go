// Package submission routes key activity to the compositor, either as raw
// keycodes through the virtual keyboard or as text through the input method.
package submission

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayosk/internal/keymap"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/logger"
)

// VirtualKeyboard injects raw key events.
type VirtualKeyboard interface {
	SetKeymap(set *keymap.Set, idx int) error
	Key(time uint32, code uint32, pressed bool) error
	Modifiers(depressed uint32) error
}

// InputMethod is the text side of the input-method session.
type InputMethod interface {
	Available() bool
	IsActive() bool
	CommitString(text string) error
	DeleteSurroundingText(before, after uint32) error
	Commit() error
	BeforeCursorLength() (uint32, bool)
}

// Capabilities says which protocols can be used right now.
type Capabilities struct {
	VirtualKeyboard bool
	// InputMethodBound is true while the protocol exists and was not
	// declared unavailable.
	InputMethodBound bool
	// InputMethod is true when bound and a text field is focused.
	InputMethod bool
}

// DiagnosticFunc receives failed protocol requests. The request is never
// retried.
type DiagnosticFunc func(op string, err error)

type route int

const (
	routeNone route = iota
	routeVirtualKeyboard
	routeInputMethod
)

// press is what a depressed key started and what its release must finish.
type press struct {
	route route
	codes []keymap.KeyCode
	text  string
	erase bool
}

// Router turns key presses and releases into protocol requests.
type Router struct {
	vk   VirtualKeyboard
	im   InputMethod
	diag DiagnosticFunc
	log  *log.Logger

	keymaps      *keymap.Set
	activeKeymap int
	modifiers    layout.Modifier
	pressed      map[string]*press
}

// New creates a router. vk may be nil when no virtual keyboard exists and im
// may be nil when the input method is not offered.
func New(vk VirtualKeyboard, im InputMethod) *Router {
	r := &Router{
		vk:           vk,
		im:           im,
		log:          logger.With("submission"),
		activeKeymap: -1,
		pressed:      make(map[string]*press),
	}
	r.diag = func(op string, err error) {
		r.log.Warn("Protocol request failed", "op", op, "err", err)
	}
	return r
}

// SetDiagnostic replaces the handler for failed requests.
func (r *Router) SetDiagnostic(fn DiagnosticFunc) {
	if fn != nil {
		r.diag = fn
	}
}

// Capabilities is computed on every call from the live protocol state.
func (r *Router) Capabilities() Capabilities {
	c := Capabilities{VirtualKeyboard: r.vk != nil}
	if r.im != nil && r.im.Available() {
		c.InputMethodBound = true
		c.InputMethod = r.im.IsActive()
	}
	return c
}

// Modifiers returns the active modifier mask.
func (r *Router) Modifiers() layout.Modifier {
	return r.modifiers
}

// ModifierActive reports whether mod is latched.
func (r *Router) ModifierActive(mod layout.Modifier) bool {
	return r.modifiers&mod != 0
}

// PressedCount is the number of keys whose release is still outstanding.
func (r *Router) PressedCount() int {
	return len(r.pressed)
}

// SetKeymaps installs the keymaps of a newly loaded layout and uploads the
// first one.
func (r *Router) SetKeymaps(set *keymap.Set) {
	r.ReleaseAll(0)
	r.keymaps = set
	r.activeKeymap = -1
	if set != nil && len(set.Keymaps) > 0 {
		r.selectKeymap(0, 0)
	}
}

// HandlePress starts the submission of a key. Text headed for the input
// method is only committed on release; keycodes go down immediately.
func (r *Router) HandlePress(key *layout.Key, time uint32) {
	if key == nil {
		return
	}
	if _, busy := r.pressed[key.ID]; busy {
		return
	}
	caps := r.Capabilities()
	p := &press{}

	switch key.Action.Kind {
	case layout.ActionSubmit:
		if caps.InputMethod && key.Action.Text != "" && r.modifiers == 0 {
			p.route = routeInputMethod
			p.text = key.Action.Text
		} else {
			r.pressCodes(p, key, time, caps)
		}
	case layout.ActionErase:
		if caps.InputMethod && r.modifiers == 0 {
			p.route = routeInputMethod
			p.erase = true
		} else {
			r.pressCodes(p, key, time, caps)
		}
	default:
		return
	}

	if p.route == routeNone {
		r.log.Debug("Key has no usable route", "key", key.ID)
	}
	r.pressed[key.ID] = p
}

func (r *Router) pressCodes(p *press, key *layout.Key, time uint32, caps Capabilities) {
	if !caps.VirtualKeyboard || len(key.Keycodes) == 0 {
		return
	}
	r.selectKeymap(key.Keycodes[0].KeymapIdx, time)
	p.route = routeVirtualKeyboard
	p.codes = key.Keycodes
	for _, code := range p.codes {
		if err := r.vk.Key(time, code.Code, true); err != nil {
			r.diag("key", err)
		}
	}
}

// HandleRelease completes the submission started by HandlePress.
func (r *Router) HandleRelease(key *layout.Key, time uint32) {
	if key == nil {
		return
	}
	p, ok := r.pressed[key.ID]
	if !ok {
		return
	}
	delete(r.pressed, key.ID)

	switch p.route {
	case routeVirtualKeyboard:
		r.releaseCodes(p, time)
	case routeInputMethod:
		if !r.Capabilities().InputMethod {
			r.log.Debug("Input method went away before release", "key", key.ID)
			return
		}
		if p.erase {
			r.erase(key, time)
			return
		}
		r.commitText(p.text)
	}
}

// HandleCancel abandons a press: held keycodes are released, text that was
// waiting for release is dropped.
func (r *Router) HandleCancel(key *layout.Key, time uint32) {
	if key == nil {
		return
	}
	p, ok := r.pressed[key.ID]
	if !ok {
		return
	}
	delete(r.pressed, key.ID)
	if p.route == routeVirtualKeyboard {
		r.releaseCodes(p, time)
	}
}

// ReleaseAll cancels every outstanding press.
func (r *Router) ReleaseAll(time uint32) {
	ids := make([]string, 0, len(r.pressed))
	for id := range r.pressed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := r.pressed[id]
		delete(r.pressed, id)
		if p.route == routeVirtualKeyboard {
			r.releaseCodes(p, time)
		}
	}
}

// ToggleModifier latches or unlatches mod and sends the new mask.
func (r *Router) ToggleModifier(mod layout.Modifier) {
	r.modifiers ^= mod
	r.sendModifiers()
}

// ClearModifiers drops every latched modifier.
func (r *Router) ClearModifiers() {
	if r.modifiers == 0 {
		return
	}
	r.modifiers = 0
	r.sendModifiers()
}

func (r *Router) sendModifiers() {
	if r.vk == nil {
		return
	}
	if err := r.vk.Modifiers(uint32(r.modifiers)); err != nil {
		r.diag("modifiers", err)
	}
}

func (r *Router) releaseCodes(p *press, time uint32) {
	for i := len(p.codes) - 1; i >= 0; i-- {
		if err := r.vk.Key(time, p.codes[i].Code, false); err != nil {
			r.diag("key", err)
		}
	}
}

func (r *Router) commitText(text string) {
	if err := r.im.CommitString(text); err != nil {
		r.diag("commit_string", err)
		return
	}
	if err := r.im.Commit(); err != nil {
		r.diag("commit", err)
	}
}

func (r *Router) erase(key *layout.Key, time uint32) {
	if n, ok := r.im.BeforeCursorLength(); ok {
		if err := r.im.DeleteSurroundingText(n, 0); err != nil {
			r.diag("delete_surrounding_text", err)
			return
		}
		if err := r.im.Commit(); err != nil {
			r.diag("commit", err)
		}
		return
	}
	// Without a known cursor position a BackSpace tap is the best we can do.
	p := &press{}
	r.pressCodes(p, key, time, r.Capabilities())
	r.releaseCodes(p, time)
}

// selectKeymap uploads keymap idx if it is not the active one. Held keys and
// modifiers belong to the old keymap and are released first.
func (r *Router) selectKeymap(idx int, time uint32) {
	if r.vk == nil || r.keymaps == nil || idx == r.activeKeymap {
		return
	}
	for _, p := range r.pressed {
		if p.route == routeVirtualKeyboard {
			r.releaseCodes(p, time)
			p.codes = nil
		}
	}
	r.ClearModifiers()
	if err := r.vk.SetKeymap(r.keymaps, idx); err != nil {
		r.diag("keymap", err)
	}
	r.activeKeymap = idx
}
