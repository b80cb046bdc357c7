package uinputkbd

import (
	"github.com/ThomasT75/uinput"

	"github.com/bnema/wayosk/internal/keymap"
)

// stroke is one physical key, optionally with shift held.
type stroke struct {
	key   int
	shift bool
}

var letterKeys = [26]int{
	uinput.KeyA, uinput.KeyB, uinput.KeyC, uinput.KeyD, uinput.KeyE, uinput.KeyF,
	uinput.KeyG, uinput.KeyH, uinput.KeyI, uinput.KeyJ, uinput.KeyK, uinput.KeyL,
	uinput.KeyM, uinput.KeyN, uinput.KeyO, uinput.KeyP, uinput.KeyQ, uinput.KeyR,
	uinput.KeyS, uinput.KeyT, uinput.KeyU, uinput.KeyV, uinput.KeyW, uinput.KeyX,
	uinput.KeyY, uinput.KeyZ,
}

var digitKeys = [10]int{
	uinput.Key0, uinput.Key1, uinput.Key2, uinput.Key3, uinput.Key4,
	uinput.Key5, uinput.Key6, uinput.Key7, uinput.Key8, uinput.Key9,
}

// US QWERTY positions of named keysyms.
var namedStrokes = map[keymap.KeySym]stroke{
	"space":        {key: uinput.KeySpace},
	"Return":       {key: uinput.KeyEnter},
	"KP_Enter":     {key: uinput.KeyKpenter},
	"BackSpace":    {key: uinput.KeyBackspace},
	"Tab":          {key: uinput.KeyTab},
	"Escape":       {key: uinput.KeyEsc},
	"Delete":       {key: uinput.KeyDelete},
	"Insert":       {key: uinput.KeyInsert},
	"Home":         {key: uinput.KeyHome},
	"End":          {key: uinput.KeyEnd},
	"Prior":        {key: uinput.KeyPageup},
	"Page_Up":      {key: uinput.KeyPageup},
	"Next":         {key: uinput.KeyPagedown},
	"Page_Down":    {key: uinput.KeyPagedown},
	"Left":         {key: uinput.KeyLeft},
	"Right":        {key: uinput.KeyRight},
	"Up":           {key: uinput.KeyUp},
	"Down":         {key: uinput.KeyDown},
	"Caps_Lock":    {key: uinput.KeyCapslock},
	"Shift_L":      {key: uinput.KeyLeftshift},
	"Shift_R":      {key: uinput.KeyRightshift},
	"Control_L":    {key: uinput.KeyLeftctrl},
	"Control_R":    {key: uinput.KeyRightctrl},
	"Alt_L":        {key: uinput.KeyLeftalt},
	"Alt_R":        {key: uinput.KeyRightalt},
	"Super_L":      {key: uinput.KeyLeftmeta},
	"Super_R":      {key: uinput.KeyRightmeta},
	"F1":           {key: uinput.KeyF1},
	"F2":           {key: uinput.KeyF2},
	"F3":           {key: uinput.KeyF3},
	"F4":           {key: uinput.KeyF4},
	"F5":           {key: uinput.KeyF5},
	"F6":           {key: uinput.KeyF6},
	"F7":           {key: uinput.KeyF7},
	"F8":           {key: uinput.KeyF8},
	"F9":           {key: uinput.KeyF9},
	"F10":          {key: uinput.KeyF10},
	"F11":          {key: uinput.KeyF11},
	"F12":          {key: uinput.KeyF12},
	"minus":        {key: uinput.KeyMinus},
	"underscore":   {key: uinput.KeyMinus, shift: true},
	"equal":        {key: uinput.KeyEqual},
	"plus":         {key: uinput.KeyEqual, shift: true},
	"bracketleft":  {key: uinput.KeyLeftbrace},
	"braceleft":    {key: uinput.KeyLeftbrace, shift: true},
	"bracketright": {key: uinput.KeyRightbrace},
	"braceright":   {key: uinput.KeyRightbrace, shift: true},
	"backslash":    {key: uinput.KeyBackslash},
	"bar":          {key: uinput.KeyBackslash, shift: true},
	"semicolon":    {key: uinput.KeySemicolon},
	"colon":        {key: uinput.KeySemicolon, shift: true},
	"apostrophe":   {key: uinput.KeyApostrophe},
	"quotedbl":     {key: uinput.KeyApostrophe, shift: true},
	"grave":        {key: uinput.KeyGrave},
	"asciitilde":   {key: uinput.KeyGrave, shift: true},
	"comma":        {key: uinput.KeyComma},
	"less":         {key: uinput.KeyComma, shift: true},
	"period":       {key: uinput.KeyDot},
	"greater":      {key: uinput.KeyDot, shift: true},
	"slash":        {key: uinput.KeySlash},
	"question":     {key: uinput.KeySlash, shift: true},
	"exclam":       {key: uinput.Key1, shift: true},
	"at":           {key: uinput.Key2, shift: true},
	"numbersign":   {key: uinput.Key3, shift: true},
	"dollar":       {key: uinput.Key4, shift: true},
	"percent":      {key: uinput.Key5, shift: true},
	"asciicircum":  {key: uinput.Key6, shift: true},
	"ampersand":    {key: uinput.Key7, shift: true},
	"asterisk":     {key: uinput.Key8, shift: true},
	"parenleft":    {key: uinput.Key9, shift: true},
	"parenright":   {key: uinput.Key0, shift: true},
}

// strokeFor returns how a keysym is typed on a US layout. Unicode keysyms
// have no physical key and are not typeable through uinput.
func strokeFor(sym keymap.KeySym) (stroke, bool) {
	if len(sym) == 1 {
		c := sym[0]
		switch {
		case c >= 'a' && c <= 'z':
			return stroke{key: letterKeys[c-'a']}, true
		case c >= 'A' && c <= 'Z':
			return stroke{key: letterKeys[c-'A'], shift: true}, true
		case c >= '0' && c <= '9':
			return stroke{key: digitKeys[c-'0']}, true
		}
	}
	s, ok := namedStrokes[sym]
	return s, ok
}
