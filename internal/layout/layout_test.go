package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/keymap"
)

const smallLayout = `
margins: { top: 1, bottom: 2, side: 3 }
outlines:
    default: { width: 10, height: 20 }
    wide: { width: 30, height: 20 }
views:
    base:
        - "a b c"
        - "shift space"
    upper:
        - "A B C"
        - "shift space"
buttons:
    shift:
        action:
            locking:
                lock_view: upper
                unlock_view: base
                pops: true
    space:
        outline: wide
        text: " "
`

func parseSmall(t *testing.T) *Layout {
	t.Helper()
	l, err := Parse("small", []byte(smallLayout))
	require.NoError(t, err)
	return l
}

func TestParseGeometry(t *testing.T) {
	l := parseSmall(t)

	assert.Equal(t, BaseView, l.CurrentViewName())
	// widest row is 40 units, plus 3 on each side; two rows of 20 plus margins
	assert.Equal(t, geometry.Size{Width: 46, Height: 43}, l.Size())

	rows := l.CurrentView().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, geometry.Bounds{X: 8, Y: 1, Width: 10, Height: 20}, rows[0].Buttons[0].Bounds)
	assert.Equal(t, geometry.Bounds{X: 13, Y: 21, Width: 30, Height: 20}, rows[1].Buttons[1].Bounds)
}

func TestFindButton(t *testing.T) {
	l := parseSmall(t)

	tests := []struct {
		name  string
		point geometry.Point
		want  string
		found bool
	}{
		{"first key", geometry.Point{X: 9, Y: 5}, "a", true},
		{"shared edge belongs to right key", geometry.Point{X: 18, Y: 5}, "b", true},
		{"second row", geometry.Point{X: 20, Y: 30}, "space", true},
		{"side margin", geometry.Point{X: 1, Y: 5}, "", false},
		{"centring gap", geometry.Point{X: 5, Y: 5}, "", false},
		{"below keyboard", geometry.Point{X: 20, Y: 42}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := l.FindButton(tt.point)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, b.KeyID)
			}
		})
	}
}

func TestKeyActions(t *testing.T) {
	l := parseSmall(t)

	a, ok := l.Key("a")
	require.True(t, ok)
	assert.Equal(t, ActionSubmit, a.Action.Kind)
	assert.Equal(t, "a", a.Action.Text)
	assert.Equal(t, []keymap.KeySym{"a"}, a.Action.Keys)
	require.Len(t, a.Keycodes, 1)

	space, _ := l.Key("space")
	assert.Equal(t, []keymap.KeySym{"space"}, space.Action.Keys)

	shift, _ := l.Key("shift")
	assert.Equal(t, ActionLockView, shift.Action.Kind)
	assert.True(t, shift.Action.Lock.Pops)
	assert.Empty(t, shift.Keycodes)
}

func TestLockedAndPressed(t *testing.T) {
	l := parseSmall(t)

	assert.False(t, l.IsLocked("shift"))
	require.NoError(t, l.SetView("upper"))
	assert.True(t, l.IsLocked("shift"))
	assert.False(t, l.IsLocked("A"))

	assert.ErrorIs(t, l.SetView("nope"), ErrUnknownView)
	assert.Equal(t, "upper", l.CurrentViewName())

	l.SetPressed("B", true)
	l.SetPressed("A", true)
	assert.True(t, l.IsPressed("A"))
	assert.Equal(t, []string{"A", "B"}, l.PressedKeys())
	l.SetPressed("A", false)
	assert.Equal(t, []string{"B"}, l.PressedKeys())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no base view", "outlines: {default: {width: 1, height: 1}}\nviews: {other: [\"a\"]}\n"},
		{"no default outline", "outlines: {x: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\n"},
		{"unknown field", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nextra: 1\n"},
		{"unknown outline", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nbuttons: {a: {outline: big}}\n"},
		{"missing view", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nbuttons: {a: {action: {set_view: numbers}}}\n"},
		{"bad keysym", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nbuttons: {a: {keysym: NotAKey}}\n"},
		{"bad modifier", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nbuttons: {a: {modifier: Shift}}\n"},
		{"mixed", "outlines: {default: {width: 1, height: 1}}\nviews: {base: [\"a\"]}\nbuttons: {a: {keysym: a, text: b}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad", []byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

func TestBuiltinLayoutsParse(t *testing.T) {
	loader := NewLoader("")
	names := loader.Names()
	assert.Equal(t, []string{"number", "terminal", "us", "us_wide"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			l, err := loader.loadNamed(name)
			require.NoError(t, err)
			assert.Contains(t, l.Views, BaseView)
			assert.Positive(t, l.Size().Width)
		})
	}
}

func TestBuiltinKeys(t *testing.T) {
	l, err := NewLoader("").Load(State{LayoutName: "terminal"})
	require.NoError(t, err)

	ctrl, _ := l.Key("Ctrl")
	assert.Equal(t, ActionApplyModifier, ctrl.Action.Kind)
	assert.Equal(t, ModControl, ctrl.Action.Modifier)

	ret, _ := l.Key("Return")
	assert.Empty(t, ret.Action.Text)
	assert.Equal(t, []keymap.KeySym{"Return"}, ret.Action.Keys)

	bs, _ := l.Key("BackSpace")
	assert.Equal(t, ActionErase, bs.Action.Kind)
	require.Len(t, bs.Keycodes, 1)
}

func TestSelectLayout(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"default", State{}, []string{"us"}},
		{"user layout", State{LayoutName: "de"}, []string{"de"}},
		{"wide", State{LayoutName: "us", Arrangement: ArrangementWide}, []string{"us_wide", "us"}},
		{"number purpose", State{LayoutName: "us", Purpose: imservice.PurposeNumber}, []string{"number"}},
		{"pin purpose", State{Purpose: imservice.PurposePin}, []string{"number"}},
		{"terminal purpose", State{Purpose: imservice.PurposeTerminal}, []string{"terminal"}},
		{"overlay wins", State{OverlayName: "emoji", Purpose: imservice.PurposeNumber}, []string{"emoji"}},
		{"email keeps user", State{LayoutName: "us", Purpose: imservice.PurposeEmail}, []string{"us"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Candidates())
		})
	}
}

func TestLoaderFallbacks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte(smallLayout), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("views: 3"), 0o644))
	loader := NewLoader(dir)

	l, err := loader.Load(State{LayoutName: "mine"})
	require.NoError(t, err)
	assert.Equal(t, "mine", l.Name)

	l, err = loader.Load(State{LayoutName: "us", Arrangement: ArrangementWide})
	require.NoError(t, err)
	assert.Equal(t, "us_wide", l.Name)
	assert.Equal(t, ArrangementWide, l.Arrangement)

	l, err = loader.Load(State{LayoutName: "mine", Arrangement: ArrangementWide})
	require.NoError(t, err)
	assert.Equal(t, "mine", l.Name)
	assert.Equal(t, ArrangementBase, l.Arrangement)

	l, err = loader.Load(State{LayoutName: "broken"})
	require.NoError(t, err)
	assert.Equal(t, "us", l.Name)

	l, err = loader.Load(State{LayoutName: "missing"})
	require.NoError(t, err)
	assert.Equal(t, "us", l.Name)

	assert.Contains(t, loader.Names(), "mine")
}
