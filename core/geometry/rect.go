// Package geometry provides the rectangle and polygon helpers used to turn
// line-fragment rectangles into highlight outlines.
//
// Coordinates follow screen conventions: x grows to the right and y grows
// downward.
package geometry

import (
	"math"
	"slices"
)

// Point is a position in one coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. Width and height are expected to be
// non-negative.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect returns the rectangle spanning the two corners.
func NewRect(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and o share interior area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Top() < o.Bottom() && o.Top() < r.Bottom()
}

// Touches reports whether r and o overlap or share any boundary point.
func (r Rect) Touches(o Rect) bool {
	return !(r.Right() < o.Left() || o.Right() < r.Left() ||
		r.Bottom() < o.Top() || o.Bottom() < r.Top())
}

// Contains reports whether o lies within r, edges included.
func (r Rect) Contains(o Rect) bool {
	return r.Left() <= o.Left() && r.Right() >= o.Right() &&
		r.Top() <= o.Top() && r.Bottom() >= o.Bottom()
}

// ContainsPoint reports whether p lies within r, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	return NewRect(
		math.Min(r.Left(), o.Left()),
		math.Min(r.Top(), o.Top()),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Corners returns the closed clockwise outline of r starting at its
// top-left corner.
func (r Rect) Corners() Path {
	return Path{
		{r.Left(), r.Top()},
		{r.Right(), r.Top()},
		{r.Right(), r.Bottom()},
		{r.Left(), r.Bottom()},
		{r.Left(), r.Top()},
	}
}

// Bounds returns the bounding rectangle of rects, or false if there are
// none.
func Bounds(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	b := rects[0]
	for _, r := range rects[1:] {
		b = b.Union(r)
	}
	return b, true
}

// PathsBounds returns the bounding rectangle of every point in paths.
func PathsBounds(paths []Path) (Rect, bool) {
	found := false
	var left, top, right, bottom float64
	for _, p := range paths {
		for _, pt := range p {
			if !found {
				left, right, top, bottom = pt.X, pt.X, pt.Y, pt.Y
				found = true
				continue
			}
			left, right = math.Min(left, pt.X), math.Max(right, pt.X)
			top, bottom = math.Min(top, pt.Y), math.Max(bottom, pt.Y)
		}
	}
	if !found {
		return Rect{}, false
	}
	return NewRect(left, top, right, bottom), true
}

// Dedupe drops exact duplicate rectangles, keeping first occurrences.
func Dedupe(rects []Rect) []Rect {
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
