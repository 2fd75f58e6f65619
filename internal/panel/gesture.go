package panel

import (
	"math"
	"strings"
)

// Direction names the edges a resize handle moves.
type Direction uint8

const (
	Right Direction = 1 << iota
	Left
	Bottom
	Top

	BottomRight = Bottom | Right
	BottomLeft  = Bottom | Left
	TopRight    = Top | Right
	TopLeft     = Top | Left
)

var directionNames = []struct {
	dir  Direction
	name string
}{
	{TopLeft, "top-left"},
	{TopRight, "top-right"},
	{BottomLeft, "bottom-left"},
	{BottomRight, "bottom-right"},
	{Right, "right"},
	{Left, "left"},
	{Bottom, "bottom"},
	{Top, "top"},
}

// ParseDirection parses names such as "right", "bottom" or "bottom-right".
func ParseDirection(s string) (Direction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range directionNames {
		if d.name == s {
			return d.dir, true
		}
	}
	return 0, false
}

func (d Direction) String() string {
	for _, n := range directionNames {
		if n.dir == d {
			return n.name
		}
	}
	return ""
}

// Valid reports whether d names a usable handle: at least one edge and no
// opposing edges.
func (d Direction) Valid() bool {
	if d == 0 || d&^(Right|Left|Bottom|Top) != 0 {
		return false
	}
	return d&(Right|Left) != Right|Left && d&(Top|Bottom) != Top|Bottom
}

// Drag moves the panel so its top-left corner sits at pointer-offset, clamped to vp.
// Size is not changed.
func Drag(g Geometry, pointer, offset Point, vp Viewport, l Limits) Geometry {
	g.Position = l.ClampPosition(pointer.Sub(offset), g.Size, vp)
	return g
}

// Resize computes the geometry for a resize that started at origin with the panel at
// start. Moving the left or top edge keeps the opposite edge fixed unless a bound is hit.
func Resize(start Geometry, dir Direction, origin, pointer Point, vp Viewport, l Limits) Geometry {
	delta := pointer.Sub(origin)
	g := start

	wlo, whi := l.WidthRange(vp)
	switch {
	case dir&Right != 0:
		hi := math.Min(whi, vp.Width-l.Margin-start.Position.X)
		g.Size.Width = clamp(start.Size.Width+delta.X, wlo, hi)
	case dir&Left != 0:
		right := start.Right()
		hi := math.Min(whi, right-l.Margin)
		g.Size.Width = clamp(start.Size.Width-delta.X, wlo, hi)
		g.Position.X = right - g.Size.Width
	}

	hlo, hhi := l.HeightRange(vp, start.Minimized)
	switch {
	case dir&Bottom != 0:
		hi := math.Min(hhi, vp.Height-l.Margin-start.Position.Y)
		g.Size.Height = clamp(start.Size.Height+delta.Y, hlo, hi)
	case dir&Top != 0:
		bottom := start.Bottom()
		hi := math.Min(hhi, bottom-l.Margin)
		g.Size.Height = clamp(start.Size.Height-delta.Y, hlo, hi)
		g.Position.Y = bottom - g.Size.Height
	}

	return l.Clamp(g, vp)
}

// Reclamp fits g into a resized viewport. Position moves first; size only shrinks
// when it no longer fits the new viewport.
func Reclamp(g Geometry, vp Viewport, l Limits) Geometry {
	return l.Clamp(g, vp)
}

// SetMinimized collapses the panel to the minimized height, or restores the
// expanded height. The bottom edge is kept where it was.
func SetMinimized(g Geometry, minimized bool, expandedHeight float64, vp Viewport, l Limits) Geometry {
	if g.Minimized == minimized {
		return g
	}
	bottom := g.Bottom()
	g.Minimized = minimized
	if minimized {
		g.Size.Height = l.MinimizedHeight
	} else {
		g.Size.Height = expandedHeight
	}
	g.Size = l.ClampSize(g.Size, minimized, vp)
	g.Position.Y = bottom - g.Size.Height
	g.Position = l.ClampPosition(g.Position, g.Size, vp)
	return g
}
