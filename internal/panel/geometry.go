// Package panel computes position and size of the floating player panel from
// pointer and touch input, and derives which controls fit at a given size.
package panel

import "math"

// Point is a position in CSS pixels, relative to the viewport's top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the visible window area.
type Viewport struct {
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

// Geometry is the panel's placement. The panel's right edge is Position.X+Size.Width.
type Geometry struct {
	Position  Point `json:"position"`
	Size      Size  `json:"size"`
	Minimized bool  `json:"minimized"`
}

// Right returns the x coordinate of the right edge.
func (g Geometry) Right() float64 { return g.Position.X + g.Size.Width }

// Bottom returns the y coordinate of the bottom edge.
func (g Geometry) Bottom() float64 { return g.Position.Y + g.Size.Height }

// Limits holds the sizing constants of the panel.
type Limits struct {
	Margin             float64
	MaxWidth           float64
	MaxHeight          float64
	MinWidth           float64
	MinHeight          float64
	MinHeightMinimized float64
	MinimizedHeight    float64
	DefaultWidth       float64
	DefaultHeight      float64
}

// DefaultLimits returns the limits used by the site's player.
func DefaultLimits() Limits {
	return Limits{
		Margin:             20,
		MaxWidth:           600,
		MaxHeight:          400,
		MinWidth:           200,
		MinHeight:          120,
		MinHeightMinimized: 60,
		MinimizedHeight:    60,
		DefaultWidth:       350,
		DefaultHeight:      200,
	}
}

// WidthRange returns the allowed width for vp. When the viewport is too small
// to honour both bounds the minimum wins.
func (l Limits) WidthRange(vp Viewport) (lo, hi float64) {
	hi = math.Min(l.MaxWidth, vp.Width-2*l.Margin)
	return l.MinWidth, math.Max(hi, l.MinWidth)
}

// HeightRange returns the allowed height for vp.
func (l Limits) HeightRange(vp Viewport, minimized bool) (lo, hi float64) {
	lo = l.MinHeight
	if minimized {
		lo = l.MinHeightMinimized
	}
	hi = math.Min(l.MaxHeight, vp.Height-2*l.Margin)
	return lo, math.Max(hi, lo)
}

// ClampSize constrains s to the width and height ranges.
func (l Limits) ClampSize(s Size, minimized bool, vp Viewport) Size {
	wlo, whi := l.WidthRange(vp)
	hlo, hhi := l.HeightRange(vp, minimized)
	return Size{
		Width:  clamp(s.Width, wlo, whi),
		Height: clamp(s.Height, hlo, hhi),
	}
}

// ClampPosition keeps a panel of size s at least Margin away from every viewport edge.
func (l Limits) ClampPosition(p Point, s Size, vp Viewport) Point {
	return Point{
		X: clamp(p.X, l.Margin, vp.Width-s.Width-l.Margin),
		Y: clamp(p.Y, l.Margin, vp.Height-s.Height-l.Margin),
	}
}

// Clamp returns g with size and position inside the bounds for vp.
func (l Limits) Clamp(g Geometry, vp Viewport) Geometry {
	g.Size = l.ClampSize(g.Size, g.Minimized, vp)
	g.Position = l.ClampPosition(g.Position, g.Size, vp)
	return g
}

// Initial places a default-sized panel in the bottom-right corner of vp.
func (l Limits) Initial(vp Viewport) Geometry {
	size := l.ClampSize(Size{Width: l.DefaultWidth, Height: l.DefaultHeight}, false, vp)
	pos := Point{
		X: vp.Width - size.Width - l.Margin,
		Y: vp.Height - size.Height - l.Margin,
	}
	return Geometry{
		Position: l.ClampPosition(pos, size, vp),
		Size:     size,
	}
}

// InBounds reports whether g satisfies every bound for vp.
func (l Limits) InBounds(g Geometry, vp Viewport) bool {
	wlo, whi := l.WidthRange(vp)
	hlo, hhi := l.HeightRange(vp, g.Minimized)
	if g.Size.Width < wlo || g.Size.Width > whi || g.Size.Height < hlo || g.Size.Height > hhi {
		return false
	}
	maxX := math.Max(vp.Width-g.Size.Width-l.Margin, l.Margin)
	maxY := math.Max(vp.Height-g.Size.Height-l.Margin, l.Margin)
	return g.Position.X >= l.Margin && g.Position.X <= maxX &&
		g.Position.Y >= l.Margin && g.Position.Y <= maxY
}

// clamp returns v limited to [lo, hi]; lo wins when hi < lo.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
