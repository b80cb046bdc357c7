package layout

import (
	"fmt"
	"strings"

	"github.com/bnema/wayosk/internal/keymap"
)

// ActionKind enumerates what a key does when activated.
type ActionKind int

const (
	ActionSubmit ActionKind = iota
	ActionErase
	ActionSetView
	ActionLockView
	ActionApplyModifier
	ActionShowPreferences
)

func (k ActionKind) String() string {
	switch k {
	case ActionSubmit:
		return "submit"
	case ActionErase:
		return "erase"
	case ActionSetView:
		return "set_view"
	case ActionLockView:
		return "locking"
	case ActionApplyModifier:
		return "modifier"
	case ActionShowPreferences:
		return "show_prefs"
	}
	return "unknown"
}

// Modifier is an XKB modifier mask bit.
type Modifier uint32

const (
	ModControl Modifier = 0x4
	ModAlt     Modifier = 0x8
	ModMod4    Modifier = 0x40
)

// ParseModifier accepts the modifier names used in layout files.
func ParseModifier(name string) (Modifier, error) {
	switch strings.ToLower(name) {
	case "control", "ctrl":
		return ModControl, nil
	case "alt", "mod1":
		return ModAlt, nil
	case "mod4", "super":
		return ModMod4, nil
	}
	return 0, fmt.Errorf("unsupported modifier %q", name)
}

func (m Modifier) String() string {
	switch m {
	case ModControl:
		return "Control"
	case ModAlt:
		return "Alt"
	case ModMod4:
		return "Mod4"
	}
	return fmt.Sprintf("Modifier(0x%x)", uint32(m))
}

// LockSpec describes a view-locking key such as shift.
type LockSpec struct {
	LockView        string
	UnlockView      string
	Pops            bool
	LooksLockedFrom []string
}

// Action is the behaviour bound to a key.
type Action struct {
	Kind ActionKind
	// Text is submitted through the input method when available.
	Text string
	// Keys are sent through the virtual keyboard.
	Keys     []keymap.KeySym
	View     string
	Lock     LockSpec
	Modifier Modifier
}

// Key is the shared state of every button that carries the same id.
type Key struct {
	ID       string
	Action   Action
	Keycodes []keymap.KeyCode
}
