package geometry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTransform(t *testing.T) {
	t.Run("fits width and centers vertically", func(t *testing.T) {
		tr, ok := ComputeTransform(400, 300, Size{Width: 200, Height: 100})
		require.True(t, ok)
		assert.Equal(t, 2.0, tr.ScaleX)
		assert.Equal(t, 2.0, tr.ScaleY)
		assert.Equal(t, 0.0, tr.OriginX)
		assert.Equal(t, 50.0, tr.OriginY)
	})

	t.Run("fits height and centers horizontally", func(t *testing.T) {
		tr, ok := ComputeTransform(400, 100, Size{Width: 100, Height: 100})
		require.True(t, ok)
		assert.Equal(t, 1.0, tr.ScaleX)
		assert.Equal(t, 150.0, tr.OriginX)
		assert.Equal(t, 0.0, tr.OriginY)
	})

	t.Run("rejects degenerate sizes", func(t *testing.T) {
		cases := []struct {
			w, h   float64
			layout Size
		}{
			{0, 100, Size{10, 10}},
			{100, 0, Size{10, 10}},
			{100, 100, Size{0, 10}},
			{100, 100, Size{10, 0}},
			{-1, 100, Size{10, 10}},
		}
		for _, c := range cases {
			_, ok := ComputeTransform(c.w, c.h, c.layout)
			assert.False(t, ok, "w=%v h=%v layout=%v", c.w, c.h, c.layout)
		}
	})
}

func TestRenderGeometry(t *testing.T) {
	t.Run("starts with the placeholder allocation", func(t *testing.T) {
		g := InitialRenderGeometry()
		assert.Equal(t, 100.0, g.AllocationWidth)
		assert.Equal(t, 100.0, g.AllocationHeight)
		assert.Equal(t, Identity, g.WidgetToLayout)
	})

	t.Run("zero allocation keeps the previous geometry", func(t *testing.T) {
		g := InitialRenderGeometry().Resize(400, 300, Size{Width: 200, Height: 100})
		kept := g.Resize(0, 0, Size{Width: 200, Height: 100})
		assert.Equal(t, g, kept)
	})

	t.Run("resize replaces the whole geometry", func(t *testing.T) {
		g := InitialRenderGeometry().Resize(400, 300, Size{Width: 200, Height: 100})
		assert.Equal(t, 400.0, g.AllocationWidth)
		assert.Equal(t, 300.0, g.AllocationHeight)
		assert.Equal(t, 2.0, g.WidgetToLayout.ScaleX)
	})
}

func TestWidgetLayoutRoundTrip(t *testing.T) {
	transforms := []Transform{
		Identity,
		{OriginX: 10, OriginY: -4, ScaleX: 2.5, ScaleY: 0.75},
		{OriginX: 0.3, OriginY: 1e3, ScaleX: 1e-3, ScaleY: 17},
	}
	points := [][2]float64{{0, 0}, {12.5, 99}, {-40, 3.25}, {1e4, 1e-4}}

	for i, tr := range transforms {
		for _, p := range points {
			t.Run(fmt.Sprintf("transform %d point %v", i, p), func(t *testing.T) {
				x, y := tr.LayoutToWidget(tr.WidgetToLayout(p[0], p[1]))
				assert.InDelta(t, p[0], x, 1e-9)
				assert.InDelta(t, p[1], y, 1e-9)
			})
		}
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 5, Height: 5}
	assert.True(t, b.Contains(Point{10, 10}))
	assert.True(t, b.Contains(Point{14.9, 14.9}))
	assert.False(t, b.Contains(Point{15, 12}))
	assert.False(t, b.Contains(Point{12, 15}))
	assert.Equal(t, Point{12.5, 12.5}, b.Center())

	tr := Transform{OriginX: 1, OriginY: 2, ScaleX: 2, ScaleY: 3}
	assert.Equal(t, Bounds{X: 21, Y: 32, Width: 10, Height: 15}, tr.BoundsToWidget(b))
}
