// Package geometry converts between widget pixel coordinates and layout units.
package geometry

// Point is a position in either widget or layout space.
type Point struct {
	X float64
	Y float64
}

// Size is an extent in either widget or layout space.
type Size struct {
	Width  float64
	Height float64
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether p lies inside b. The right and bottom edges are
// exclusive so that adjacent buttons never both claim a point.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.Width &&
		p.Y >= b.Y && p.Y < b.Y+b.Height
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Transform maps widget coordinates to layout coordinates:
//
//	layout = (widget - origin) / scale
//
// Scale factors are always strictly positive.
type Transform struct {
	OriginX float64
	OriginY float64
	ScaleX  float64
	ScaleY  float64
}

// Identity is the transform used before any real allocation is known.
var Identity = Transform{ScaleX: 1, ScaleY: 1}

// WidgetToLayout maps a widget-space point to layout space.
func (t Transform) WidgetToLayout(x, y float64) Point {
	return Point{
		X: (x - t.OriginX) / t.ScaleX,
		Y: (y - t.OriginY) / t.ScaleY,
	}
}

// LayoutToWidget is the inverse of WidgetToLayout.
func (t Transform) LayoutToWidget(p Point) (x, y float64) {
	return p.X*t.ScaleX + t.OriginX, p.Y*t.ScaleY + t.OriginY
}

// BoundsToWidget maps a layout rectangle into widget space.
func (t Transform) BoundsToWidget(b Bounds) Bounds {
	x, y := t.LayoutToWidget(Point{X: b.X, Y: b.Y})
	return Bounds{X: x, Y: y, Width: b.Width * t.ScaleX, Height: b.Height * t.ScaleY}
}

// valid reports whether the scale factors are usable.
func (t Transform) valid() bool {
	return t.ScaleX > 0 && t.ScaleY > 0
}

// ComputeTransform fits a layout of the given reference size into the
// allocation, keeping the aspect ratio and centering the result.
// ok is false when either size is degenerate; the caller keeps its previous
// transform in that case.
func ComputeTransform(allocWidth, allocHeight float64, layout Size) (t Transform, ok bool) {
	if allocWidth <= 0 || allocHeight <= 0 || layout.Width <= 0 || layout.Height <= 0 {
		return Transform{}, false
	}
	scale := allocWidth / layout.Width
	if v := allocHeight / layout.Height; v < scale {
		scale = v
	}
	t = Transform{
		OriginX: (allocWidth - scale*layout.Width) / 2,
		OriginY: (allocHeight - scale*layout.Height) / 2,
		ScaleX:  scale,
		ScaleY:  scale,
	}
	return t, t.valid()
}

// Placeholder allocation used before the first real size is known, so early
// paint or input never divides by zero.
const (
	PlaceholderWidth  = 100
	PlaceholderHeight = 100
)

// RenderGeometry is the allocation size together with the transform derived
// from it. It is always replaced as a whole.
type RenderGeometry struct {
	AllocationWidth  float64
	AllocationHeight float64
	WidgetToLayout   Transform
}

// InitialRenderGeometry returns the placeholder geometry.
func InitialRenderGeometry() RenderGeometry {
	return RenderGeometry{
		AllocationWidth:  PlaceholderWidth,
		AllocationHeight: PlaceholderHeight,
		WidgetToLayout:   Identity,
	}
}

// Resize returns the geometry for a new allocation. A zero-sized allocation or
// layout keeps the previous geometry untouched.
func (g RenderGeometry) Resize(width, height float64, layout Size) RenderGeometry {
	t, ok := ComputeTransform(width, height, layout)
	if !ok {
		return g
	}
	return RenderGeometry{
		AllocationWidth:  width,
		AllocationHeight: height,
		WidgetToLayout:   t,
	}
}
