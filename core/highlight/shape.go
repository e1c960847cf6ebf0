package highlight

import (
	"github.com/anthonytopper/customer-web-xp/core/geometry"
)

// Shape is one overlay element. Rect is its box in document coordinates;
// Path, when set, is the polygon it fills within that box.
type Shape struct {
	ID      string
	Color   string
	Classes []string
	Rect    geometry.Rect
	Path    geometry.Path
}

// Contains reports whether p falls on the shape's filled area.
func (s Shape) Contains(p geometry.Point) bool {
	if !s.Rect.ContainsPoint(p) {
		return false
	}
	if s.Path == nil {
		return true
	}
	return s.Path.Contains(p)
}

// SVGPath returns the path data of a polygon shape relative to its box.
func (s Shape) SVGPath() string {
	return s.Path.SVG(geometry.Point{X: s.Rect.X, Y: s.Rect.Y})
}

// Strategy turns the line boxes of a range into overlay geometry.
type Strategy interface {
	Shapes(rects []geometry.Rect) []Shape
}

// RectStrategy draws one box per distinct line rectangle.
type RectStrategy struct{}

func (RectStrategy) Shapes(rects []geometry.Rect) []Shape {
	var out []Shape
	for _, r := range geometry.Dedupe(rects) {
		out = append(out, Shape{Rect: r})
	}
	return out
}

// PathStrategy merges the line rectangles and draws one polygon per
// connected region.
type PathStrategy struct{}

func (PathStrategy) Shapes(rects []geometry.Rect) []Shape {
	var out []Shape
	for _, p := range geometry.MergeRects(rects) {
		b, ok := geometry.PathsBounds([]geometry.Path{p})
		if !ok {
			continue
		}
		out = append(out, Shape{Rect: b, Path: p})
	}
	return out
}
