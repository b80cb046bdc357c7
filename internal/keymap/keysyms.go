// Package keymap assigns keycodes to keysyms and renders the XKB keymaps that
// are uploaded to the compositor's virtual keyboard.
package keymap

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// KeySym is an XKB keysym name such as "a", "BackSpace" or "U00E9".
type KeySym string

// Keysym names for ASCII punctuation; everything else outside [a-zA-Z0-9] is
// spelled as a Unicode keysym.
var punctuation = map[rune]KeySym{
	' ':  "space",
	'!':  "exclam",
	'"':  "quotedbl",
	'#':  "numbersign",
	'$':  "dollar",
	'%':  "percent",
	'&':  "ampersand",
	'\'': "apostrophe",
	'(':  "parenleft",
	')':  "parenright",
	'*':  "asterisk",
	'+':  "plus",
	',':  "comma",
	'-':  "minus",
	'.':  "period",
	'/':  "slash",
	':':  "colon",
	';':  "semicolon",
	'<':  "less",
	'=':  "equal",
	'>':  "greater",
	'?':  "question",
	'@':  "at",
	'[':  "bracketleft",
	'\\': "backslash",
	']':  "bracketright",
	'^':  "asciicircum",
	'_':  "underscore",
	'`':  "grave",
	'{':  "braceleft",
	'|':  "bar",
	'}':  "braceright",
	'~':  "asciitilde",
}

// Named function and navigation keysyms accepted in layout files.
var named = map[KeySym]struct{}{
	"BackSpace": {}, "Tab": {}, "Return": {}, "Escape": {}, "Delete": {},
	"Home": {}, "End": {}, "Left": {}, "Up": {}, "Right": {}, "Down": {},
	"Prior": {}, "Page_Up": {}, "Next": {}, "Page_Down": {}, "Insert": {},
	"Menu": {}, "Print": {}, "Pause": {}, "Caps_Lock": {},
	"Shift_L": {}, "Shift_R": {}, "Control_L": {}, "Control_R": {},
	"Alt_L": {}, "Alt_R": {}, "Super_L": {}, "Super_R": {},
	"KP_Enter": {}, "KP_Add": {}, "KP_Subtract": {}, "KP_Multiply": {}, "KP_Divide": {},
	"F1": {}, "F2": {}, "F3": {}, "F4": {}, "F5": {}, "F6": {},
	"F7": {}, "F8": {}, "F9": {}, "F10": {}, "F11": {}, "F12": {},
}

var unicodeSym = regexp.MustCompile(`^U[0-9A-F]{4,6}$`)

func init() {
	for _, sym := range punctuation {
		named[sym] = struct{}{}
	}
}

// Valid reports whether name is a keysym this package can put in a keymap.
func Valid(name string) bool {
	if len(name) == 1 {
		c := name[0]
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	if _, ok := named[KeySym(name)]; ok {
		return true
	}
	return unicodeSym.MatchString(name)
}

// ForText returns the keysym that types text, if any. Only text made of a
// single code point has one; longer sequences (emoji with modifiers, ligatures)
// can only be committed through an input method.
func ForText(text string) (KeySym, bool) {
	if utf8.RuneCountInString(text) != 1 {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return "", false
	}
	switch {
	case r < utf8.RuneSelf && Valid(string(r)):
		return KeySym(string(r)), true
	case r == '\n':
		return "Return", true
	case r == '\t':
		return "Tab", true
	}
	if sym, ok := punctuation[r]; ok {
		return sym, true
	}
	if r < 0x20 || r == 0x7f {
		return "", false
	}
	return KeySym(fmt.Sprintf("U%04X", r)), true
}

// TextFor is the inverse of ForText for printable keysyms.
func TextFor(sym KeySym) (string, bool) {
	if len(sym) == 1 && Valid(string(sym)) {
		return string(sym), true
	}
	for r, name := range punctuation {
		if name == sym {
			return string(r), true
		}
	}
	if unicodeSym.MatchString(string(sym)) {
		v, err := strconv.ParseUint(string(sym[1:]), 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return "", false
		}
		return string(rune(v)), true
	}
	return "", false
}
