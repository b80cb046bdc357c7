package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// XKB keycodes are evdev codes offset by 8, and a keymap may not exceed 255.
const (
	evdevOffset = 8
	// MaxPerKeymap is the number of keysyms one generated keymap can hold.
	MaxPerKeymap = 255 - evdevOffset
)

// KeyCode is an evdev keycode valid within one of the generated keymaps.
type KeyCode struct {
	Code      uint32
	KeymapIdx int
}

// Set is the result of generating keymaps for a layout.
type Set struct {
	Codes   map[KeySym]KeyCode
	Keymaps []string
}

// Lookup returns the keycode assigned to sym.
func (s *Set) Lookup(sym KeySym) (KeyCode, bool) {
	if s == nil {
		return KeyCode{}, false
	}
	code, ok := s.Codes[sym]
	return code, ok
}

// Generate assigns keycodes to every distinct keysym and renders as many
// keymaps as needed to hold them. Assignment is deterministic.
func Generate(syms []KeySym) (*Set, error) {
	unique := make(map[KeySym]struct{}, len(syms))
	for _, sym := range syms {
		if !Valid(string(sym)) {
			return nil, fmt.Errorf("invalid keysym %q", sym)
		}
		unique[sym] = struct{}{}
	}
	sorted := make([]KeySym, 0, len(unique))
	for sym := range unique {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	set := &Set{Codes: make(map[KeySym]KeyCode, len(sorted))}
	for start := 0; start < len(sorted) || start == 0; start += MaxPerKeymap {
		end := start + MaxPerKeymap
		if end > len(sorted) {
			end = len(sorted)
		}
		idx := len(set.Keymaps)
		chunk := sorted[start:end]
		for i, sym := range chunk {
			set.Codes[sym] = KeyCode{Code: uint32(i + 1), KeymapIdx: idx}
		}
		set.Keymaps = append(set.Keymaps, render(chunk))
		if end == len(sorted) {
			break
		}
	}
	return set, nil
}

// render produces an XKB keymap in which chunk[i] sits at evdev code i+1.
func render(chunk []KeySym) string {
	var b strings.Builder
	b.WriteString("xkb_keymap {\n")
	b.WriteString("    xkb_keycodes \"wayosk\" {\n")
	b.WriteString("        minimum = 8;\n        maximum = 255;\n")
	for i := range chunk {
		code := i + 1 + evdevOffset
		fmt.Fprintf(&b, "        <I%d> = %d;\n", code, code)
	}
	b.WriteString("    };\n")
	b.WriteString("    xkb_symbols \"wayosk\" {\n")
	for i, sym := range chunk {
		fmt.Fprintf(&b, "        key <I%d> { [ %s ] };\n", i+1+evdevOffset, sym)
	}
	b.WriteString("    };\n")
	b.WriteString("    xkb_types \"wayosk\" { include \"complete\" };\n")
	b.WriteString("    xkb_compat \"wayosk\" { include \"complete\" };\n")
	b.WriteString("};\n")
	return b.String()
}
