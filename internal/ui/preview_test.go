package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/layout"
	"github.com/bnema/wayosk/internal/session"
)

func newTestPreview(t *testing.T) *Preview {
	t.Helper()
	p, err := NewPreview(session.Options{
		Loader:     layout.NewLoader(t.TempDir()),
		LayoutName: "us",
	})
	require.NoError(t, err)
	p.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return p
}

// cellOf returns the terminal cell at the centre of a key.
func cellOf(t *testing.T, p *Preview, id string) (col, row int) {
	t.Helper()
	b, ok := p.Session().Layout().FindKey(id)
	require.True(t, ok, id)
	x, y := p.Session().Machine().Geometry().WidgetToLayout.LayoutToWidget(b.Bounds.Center())
	return int(x), int(y/CellAspect) + headerRows
}

func click(t *testing.T, p *Preview, id string) {
	t.Helper()
	col, row := cellOf(t, p, id)
	p.Update(tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	p.Update(tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPreviewClickTypesThroughVirtualKeyboard(t *testing.T) {
	p := newTestPreview(t)

	click(t, p, "a")

	assert.Equal(t, "a", p.Recorder().Text())
	assert.Contains(t, p.Recorder().Lines()[len(p.Recorder().Lines())-1], "released")
}

func TestPreviewFocusedFieldUsesInputMethod(t *testing.T) {
	p := newTestPreview(t)
	p.Update(keyPress('i'))
	require.True(t, p.Session().InputMethod().IsActive())

	click(t, p, "h")
	click(t, p, "i")
	assert.Equal(t, "hi", p.Recorder().Text())
	assert.Contains(t, p.Recorder().Lines(), `im.commit_string "i"`)

	click(t, p, "BackSpace")
	assert.Equal(t, "h", p.Recorder().Text())
}

func TestPreviewPurposeSelectsLayout(t *testing.T) {
	p := newTestPreview(t)
	p.Update(keyPress('i'))
	p.Update(keyPress('p'))

	assert.Equal(t, "number", p.Session().Layout().Name)
}

func TestPreviewNextLayout(t *testing.T) {
	p := newTestPreview(t)
	before := p.Session().Layout().Name
	p.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.NotEqual(t, before, p.Session().Layout().Name)
}

func TestPreviewQuitReleasesKeys(t *testing.T) {
	p := newTestPreview(t)
	col, row := cellOf(t, p, "a")
	p.Update(tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, []string{"a"}, p.Session().Layout().PressedKeys())

	_, cmd := p.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.Empty(t, p.Session().Layout().PressedKeys())
}

func TestPreviewView(t *testing.T) {
	p := newTestPreview(t)
	view := p.View()
	assert.Contains(t, view, "wayosk preview")
	assert.Contains(t, view, "us / base")
	assert.Contains(t, view, "[")
	assert.Contains(t, view, "focus text field")

	p.Update(keyPress('i'))
	view = p.View()
	assert.Contains(t, view, "focused")
	assert.NotContains(t, view, "focus text field")
}

func TestRasterizeView(t *testing.T) {
	l, err := layout.NewLoader("").Load(layout.State{LayoutName: "us"})
	require.NoError(t, err)

	cols, rows := 80, 12
	w, h := WidgetSize(cols, rows)
	tr, ok := geometry.ComputeTransform(w, h, l.Size())
	require.True(t, ok)

	plain := RasterizeView(l, tr, cols, rows).Plain()
	assert.Contains(t, plain, "q")
	assert.Contains(t, plain, "[")
	assert.Len(t, splitLines(plain), rows)

	empty := RasterizeView(nil, tr, 4, 2).Plain()
	assert.Equal(t, "\n", empty)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
