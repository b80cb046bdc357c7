package wayland

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// keymapFormatXKBv1 is wl_keyboard.keymap_format.xkb_v1.
const keymapFormatXKBv1 = 1

// keymapFile copies a NUL terminated keymap into an anonymous memory file
// the compositor can map. The caller closes the descriptor.
func keymapFile(text string) (fd int, size uint32, err error) {
	fd, err = unix.MemfdCreate("wayosk-keymap", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return -1, 0, fmt.Errorf("memfd_create: %w", err)
	}
	data := append([]byte(text), 0)
	for written := 0; written < len(data); {
		n, werr := unix.Write(fd, data[written:])
		if werr != nil {
			_ = unix.Close(fd)
			return -1, 0, fmt.Errorf("write keymap: %w", werr)
		}
		written += n
	}
	// Readers only ever map the file, so further changes are forbidden.
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS,
		unix.F_SEAL_SHRINK|unix.F_SEAL_GROW|unix.F_SEAL_WRITE|unix.F_SEAL_SEAL); err != nil {
		_ = unix.Close(fd)
		return -1, 0, fmt.Errorf("seal keymap: %w", err)
	}
	return fd, uint32(len(data)), nil
}
