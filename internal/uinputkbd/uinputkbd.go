// Package uinputkbd is a virtual keyboard backed by /dev/uinput, for
// compositors without the virtual-keyboard protocol. Keysyms are typed at
// their US QWERTY positions, so the system keymap must be US for the output
// to match.
package uinputkbd

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"
	"github.com/charmbracelet/log"

	"github.com/bnema/wayosk/internal/keymap"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/logger"
)

// DefaultPath is the uinput device node.
const DefaultPath = "/dev/uinput"

// device is the part of uinput.Keyboard this package drives.
type device interface {
	KeyDown(key int) error
	KeyUp(key int) error
	Close() error
}

var modifierKeys = []struct {
	mod layout.Modifier
	key int
}{
	{layout.ModControl, uinput.KeyLeftctrl},
	{layout.ModAlt, uinput.KeyLeftalt},
	{layout.ModMod4, uinput.KeyLeftmeta},
}

// Keyboard implements the session's virtual keyboard on top of uinput.
type Keyboard struct {
	mu     sync.Mutex
	dev    device
	syms   map[uint32]keymap.KeySym
	held   map[uint32]stroke
	mods   layout.Modifier
	closed bool
	log    *log.Logger
}

// Open creates the uinput device.
func Open(path, name string) (*Keyboard, error) {
	if path == "" {
		path = DefaultPath
	}
	dev, err := uinput.CreateKeyboard(path, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput keyboard at %s: %w", path, err)
	}
	return newKeyboard(dev), nil
}

func newKeyboard(dev device) *Keyboard {
	return &Keyboard{
		dev:  dev,
		syms: make(map[uint32]keymap.KeySym),
		held: make(map[uint32]stroke),
		log:  logger.With("uinput"),
	}
}

// SetKeymap selects which generated keymap the following keycodes refer to.
func (k *Keyboard) SetKeymap(set *keymap.Set, idx int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	syms := make(map[uint32]keymap.KeySym)
	if set != nil {
		for sym, code := range set.Codes {
			if code.KeymapIdx == idx {
				syms[code.Code] = sym
			}
		}
	}
	k.syms = syms
	return nil
}

// Key presses or releases the key that types the keysym behind code.
func (k *Keyboard) Key(_ uint32, code uint32, pressed bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return fmt.Errorf("uinput keyboard closed")
	}

	if !pressed {
		s, ok := k.held[code]
		if !ok {
			return nil
		}
		delete(k.held, code)
		return k.up(s)
	}

	sym, ok := k.syms[code]
	if !ok {
		return fmt.Errorf("keycode %d not in current keymap", code)
	}
	s, ok := strokeFor(sym)
	if !ok {
		k.log.Debug("Keysym has no uinput key, skipping", "keysym", sym)
		return nil
	}
	if err := k.down(s); err != nil {
		return err
	}
	k.held[code] = s
	return nil
}

// Modifiers holds the physical modifier keys matching depressed.
func (k *Keyboard) Modifiers(depressed uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return fmt.Errorf("uinput keyboard closed")
	}

	next := layout.Modifier(depressed)
	for _, m := range modifierKeys {
		was, is := k.mods&m.mod != 0, next&m.mod != 0
		var err error
		switch {
		case is && !was:
			err = k.dev.KeyDown(m.key)
		case was && !is:
			err = k.dev.KeyUp(m.key)
		}
		if err != nil {
			return fmt.Errorf("failed to update modifier %s: %w", m.mod, err)
		}
	}
	k.mods = next
	return nil
}

// Close releases everything still held and destroys the device.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	for code, s := range k.held {
		if err := k.up(s); err != nil {
			k.log.Warn("Failed to release key", "keycode", code, "err", err)
		}
	}
	k.held = map[uint32]stroke{}
	for _, m := range modifierKeys {
		if k.mods&m.mod != 0 {
			_ = k.dev.KeyUp(m.key)
		}
	}
	k.mods = 0
	k.closed = true
	return k.dev.Close()
}

func (k *Keyboard) down(s stroke) error {
	if s.shift {
		if err := k.dev.KeyDown(uinput.KeyLeftshift); err != nil {
			return fmt.Errorf("failed to press shift: %w", err)
		}
	}
	if err := k.dev.KeyDown(s.key); err != nil {
		return fmt.Errorf("failed to press key %d: %w", s.key, err)
	}
	return nil
}

func (k *Keyboard) up(s stroke) error {
	if err := k.dev.KeyUp(s.key); err != nil {
		return fmt.Errorf("failed to release key %d: %w", s.key, err)
	}
	if s.shift {
		if err := k.dev.KeyUp(uinput.KeyLeftshift); err != nil {
			return fmt.Errorf("failed to release shift: %w", err)
		}
	}
	return nil
}
