// Package layout holds keyboard layouts: their views, button geometry, keys
// and the per-key pressed and locked flags.
package layout

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/keymap"
)

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownView   = errors.New("unknown view")
)

// BaseView is the view every layout starts in.
const BaseView = "base"

// Margins surround every view.
type Margins struct {
	Top    float64
	Bottom float64
	Side   float64
}

// Button is one placed instance of a key inside a view.
type Button struct {
	KeyID   string
	Label   string
	Icon    string
	Outline string
	Bounds  geometry.Bounds
}

// Row is a horizontal run of buttons.
type Row struct {
	Bounds  geometry.Bounds
	Buttons []Button
}

// View is one page of a layout.
type View struct {
	Name string
	Rows []Row
	Size geometry.Size
}

// Layout is a parsed keyboard with its current view and key states.
type Layout struct {
	Name        string
	Arrangement Arrangement
	Margins     Margins
	Views       map[string]*View
	Keys        map[string]*Key
	Keymaps     *keymap.Set

	currentView string
	pressed     map[string]bool
}

// CurrentViewName returns the name of the visible view.
func (l *Layout) CurrentViewName() string {
	return l.currentView
}

// CurrentView returns the visible view.
func (l *Layout) CurrentView() *View {
	return l.Views[l.currentView]
}

// SetView switches the visible view.
func (l *Layout) SetView(name string) error {
	if _, ok := l.Views[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	l.currentView = name
	return nil
}

// Size is the extent of the current view in layout units.
func (l *Layout) Size() geometry.Size {
	if v := l.CurrentView(); v != nil {
		return v.Size
	}
	return geometry.Size{}
}

// FindButton returns the button under p in the current view. p is in layout
// units.
func (l *Layout) FindButton(p geometry.Point) (*Button, bool) {
	v := l.CurrentView()
	if v == nil {
		return nil, false
	}
	for ri := range v.Rows {
		row := &v.Rows[ri]
		if !row.Bounds.Contains(p) {
			continue
		}
		for bi := range row.Buttons {
			if row.Buttons[bi].Bounds.Contains(p) {
				return &row.Buttons[bi], true
			}
		}
	}
	return nil, false
}

// FindKey returns the first button of the current view bound to id.
func (l *Layout) FindKey(id string) (*Button, bool) {
	v := l.CurrentView()
	if v == nil {
		return nil, false
	}
	for ri := range v.Rows {
		for bi := range v.Rows[ri].Buttons {
			if v.Rows[ri].Buttons[bi].KeyID == id {
				return &v.Rows[ri].Buttons[bi], true
			}
		}
	}
	return nil, false
}

// Key returns the key with the given id.
func (l *Layout) Key(id string) (*Key, bool) {
	k, ok := l.Keys[id]
	return k, ok
}

// SetPressed records the pressed flag of a key.
func (l *Layout) SetPressed(id string, pressed bool) {
	if l.pressed == nil {
		l.pressed = make(map[string]bool)
	}
	if pressed {
		l.pressed[id] = true
	} else {
		delete(l.pressed, id)
	}
}

// IsPressed reports the pressed flag of a key.
func (l *Layout) IsPressed(id string) bool {
	return l.pressed[id]
}

// PressedKeys lists pressed key ids in sorted order.
func (l *Layout) PressedKeys() []string {
	ids := make([]string, 0, len(l.pressed))
	for id := range l.pressed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsLocked reports whether a locking key's view is active.
func (l *Layout) IsLocked(id string) bool {
	k, ok := l.Keys[id]
	if !ok || k.Action.Kind != ActionLockView {
		return false
	}
	if l.currentView == k.Action.Lock.LockView {
		return true
	}
	return slices.Contains(k.Action.Lock.LooksLockedFrom, l.currentView)
}

// DisplayLabel returns the text a renderer shows on a button.
func (b *Button) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	if b.Icon != "" {
		return iconLabel(b.Icon, b.KeyID)
	}
	return b.KeyID
}

var iconLabels = map[string]string{
	"key-shift":              "⇧",
	"edit-clear-symbolic":    "⌫",
	"key-enter":              "⏎",
	"keyboard-mode-symbolic": "⚙",
	"go-previous-symbolic":   "←",
	"go-next-symbolic":       "→",
	"go-up-symbolic":         "↑",
	"go-down-symbolic":       "↓",
}

func iconLabel(icon, fallback string) string {
	if s, ok := iconLabels[icon]; ok {
		return s
	}
	return fallback
}
