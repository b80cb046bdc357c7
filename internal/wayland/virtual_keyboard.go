package wayland

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"

	"github.com/bnema/wayosk/internal/keymap"
)

const (
	virtualKeyboardManagerInterface = "zwp_virtual_keyboard_manager_v1"
	virtualKeyboardInterface        = "zwp_virtual_keyboard_v1"
)

// zwp_virtual_keyboard_manager_v1 requests.
const opCreateVirtualKeyboard = 0

// zwp_virtual_keyboard_v1 requests.
const (
	opVKKeymap    = 0
	opVKKey       = 1
	opVKModifiers = 2
	opVKDestroy   = 3
)

type virtualKeyboardManager struct {
	client.BaseProxy
}

func (m *virtualKeyboardManager) Dispatch(uint32, int, []byte) {}

// VirtualKeyboard injects keycodes through zwp_virtual_keyboard_v1.
type VirtualKeyboard struct {
	client.BaseProxy
	conn *Conn
}

func (k *VirtualKeyboard) Dispatch(uint32, int, []byte) {}

func (c *Conn) createVirtualKeyboard() (*VirtualKeyboard, error) {
	ctx := c.display.Context()
	vk := &VirtualKeyboard{conn: c}
	vk.SetContext(ctx)
	ctx.Register(vk)

	msg := newRequest(c.vkManager.ID(), opCreateVirtualKeyboard).
		putUint32(c.seat.ID()).
		putUint32(vk.ID()).
		bytes()
	if err := c.send(msg, nil); err != nil {
		ctx.Unregister(vk)
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	return vk, nil
}

// SetKeymap uploads keymap idx of set.
func (k *VirtualKeyboard) SetKeymap(set *keymap.Set, idx int) error {
	if set == nil || idx < 0 || idx >= len(set.Keymaps) {
		return fmt.Errorf("keymap %d out of range", idx)
	}
	fd, size, err := keymapFile(set.Keymaps[idx])
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	msg := newRequest(k.ID(), opVKKeymap).
		putUint32(keymapFormatXKBv1).
		putUint32(size).
		bytes()
	return k.conn.send(msg, unix.UnixRights(fd))
}

// Key sends a key press or release. code is an evdev keycode.
func (k *VirtualKeyboard) Key(time uint32, code uint32, pressed bool) error {
	var state uint32
	if pressed {
		state = 1
	}
	msg := newRequest(k.ID(), opVKKey).
		putUint32(time).
		putUint32(code).
		putUint32(state).
		bytes()
	return k.conn.send(msg, nil)
}

// Modifiers sends the depressed modifier mask.
func (k *VirtualKeyboard) Modifiers(depressed uint32) error {
	msg := newRequest(k.ID(), opVKModifiers).
		putUint32(depressed).
		putUint32(0).
		putUint32(0).
		putUint32(0).
		bytes()
	return k.conn.send(msg, nil)
}

// Destroy releases the protocol object.
func (k *VirtualKeyboard) Destroy() error {
	err := k.conn.send(newRequest(k.ID(), opVKDestroy).bytes(), nil)
	k.Context().Unregister(k)
	return err
}
