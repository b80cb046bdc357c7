// Package visibility decides whether the keyboard panel should be shown.
package visibility

import "fmt"

// Mode is the user override of the automatic decision.
type Mode int

const (
	NotForced Mode = iota
	ForcedVisible
	ForcedHidden
)

func (m Mode) String() string {
	switch m {
	case ForcedVisible:
		return "forced_visible"
	case ForcedHidden:
		return "forced_hidden"
	}
	return "auto"
}

// ParseMode accepts show, hide and auto as well as the String forms.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "show", "forced_visible":
		return ForcedVisible, nil
	case "hide", "forced_hidden":
		return ForcedHidden, nil
	case "auto", "":
		return NotForced, nil
	}
	return NotForced, fmt.Errorf("unknown visibility mode %q", s)
}

// Manager combines the override with the input-method focus.
type Manager struct {
	mode     Mode
	imActive bool
	visible  bool
	onChange func(visible bool)
}

// New returns a manager starting in mode. onChange is called whenever the
// decision flips.
func New(mode Mode, onChange func(visible bool)) *Manager {
	m := &Manager{mode: mode, onChange: onChange}
	m.visible = m.decide()
	return m
}

// Mode returns the current override.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Visible returns the current decision.
func (m *Manager) Visible() bool {
	return m.visible
}

// SetMode changes the override.
func (m *Manager) SetMode(mode Mode) {
	m.mode = mode
	m.update()
}

// SetInputMethodActive records whether a text field has focus.
func (m *Manager) SetInputMethodActive(active bool) {
	m.imActive = active
	m.update()
}

func (m *Manager) decide() bool {
	switch m.mode {
	case ForcedVisible:
		return true
	case ForcedHidden:
		return false
	}
	return m.imActive
}

func (m *Manager) update() {
	v := m.decide()
	if v == m.visible {
		return
	}
	m.visible = v
	if m.onChange != nil {
		m.onChange(v)
	}
}
