package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/layout"
)

// CellAspect is how many widget units one terminal row spans for each unit
// of column width. Terminal cells are roughly twice as tall as wide.
const CellAspect = 2

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellBorder
	cellKey
	cellPressed
	cellLocked
)

type cell struct {
	r    rune
	kind cellKind
}

// Grid is a character raster of a keyboard view.
type Grid struct {
	cols, rows int
	cells      [][]cell
}

// WidgetSize returns the widget allocation matching a cols x rows grid.
func WidgetSize(cols, rows int) (width, height float64) {
	return float64(cols), float64(rows * CellAspect)
}

// CellToWidget returns the widget point at the centre of a terminal cell.
func CellToWidget(col, row int) (x, y float64) {
	return float64(col) + 0.5, float64(row*CellAspect) + float64(CellAspect)/2
}

// RasterizeView draws the current view of l into a cols x rows grid using
// the widget transform t.
func RasterizeView(l *layout.Layout, t geometry.Transform, cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for i := range g.cells {
		g.cells[i] = make([]cell, cols)
		for j := range g.cells[i] {
			g.cells[i][j] = cell{r: ' '}
		}
	}
	if l == nil || l.CurrentView() == nil {
		return g
	}

	for _, row := range l.CurrentView().Rows {
		for i := range row.Buttons {
			b := &row.Buttons[i]
			kind := cellKey
			switch {
			case l.IsPressed(b.KeyID):
				kind = cellPressed
			case l.IsLocked(b.KeyID):
				kind = cellLocked
			}
			g.drawButton(t.BoundsToWidget(b.Bounds), b.DisplayLabel(), kind)
		}
	}
	return g
}

func (g *Grid) drawButton(wb geometry.Bounds, label string, kind cellKind) {
	c0 := int(math.Round(wb.X))
	c1 := int(math.Round(wb.X+wb.Width)) - 1
	r0 := int(math.Round(wb.Y / CellAspect))
	r1 := int(math.Round((wb.Y+wb.Height)/CellAspect)) - 1
	if c1 <= c0 || r1 < r0 {
		return
	}

	g.set(r0, c0, '[', cellBorder)
	g.set(r0, c1, ']', cellBorder)
	for r := r0; r <= r1; r++ {
		for c := c0 + 1; c < c1; c++ {
			g.set(r, c, ' ', kind)
		}
	}

	runes := []rune(label)
	inner := c1 - c0 - 1
	if len(runes) > inner {
		runes = runes[:inner]
	}
	start := c0 + 1 + (inner-len(runes))/2
	mid := r0 + (r1-r0)/2
	for i, ch := range runes {
		g.set(mid, start+i, ch, kind)
	}
}

func (g *Grid) set(r, c int, ch rune, kind cellKind) {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return
	}
	g.cells[r][c] = cell{r: ch, kind: kind}
}

// Plain returns the grid without styling.
func (g *Grid) Plain() string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.r)
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// Render returns the grid with key states styled.
func (g *Grid) Render() string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		var b strings.Builder
		var run strings.Builder
		kind := cellEmpty
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(styleFor(kind).Render(run.String()))
				run.Reset()
			}
		}
		for _, c := range row {
			if c.kind != kind {
				flush()
				kind = c.kind
			}
			run.WriteRune(c.r)
		}
		flush()
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func styleFor(kind cellKind) lipgloss.Style {
	switch kind {
	case cellBorder:
		return KeyBorderStyle
	case cellPressed:
		return KeyPressedStyle
	case cellLocked:
		return KeyLockedStyle
	case cellKey:
		return KeyStyle
	default:
		return lipgloss.NewStyle()
	}
}
