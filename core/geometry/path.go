package geometry

import (
	"strconv"
	"strings"
)

// Path is an implicitly closed polygon outline.
type Path []Point

func (p Path) closed() bool {
	return len(p) > 1 && p[0] == p[len(p)-1]
}

// open returns p without its repeated closing point.
func (p Path) open() Path {
	if p.closed() {
		return p[:len(p)-1]
	}
	return p
}

// NormalizePath rotates p to start at its smallest point (smallest x, then
// smallest y) and closes it.
func NormalizePath(p Path) Path {
	if len(p) == 0 {
		return p
	}
	pts := p.open()
	if len(pts) == 0 {
		return p
	}
	minIdx := 0
	for i, pt := range pts {
		m := pts[minIdx]
		if pt.X < m.X || (pt.X == m.X && pt.Y < m.Y) {
			minIdx = i
		}
	}
	out := make(Path, 0, len(pts)+1)
	out = append(out, pts[minIdx:]...)
	out = append(out, pts[:minIdx]...)
	return append(out, out[0])
}

// PathsEqual reports whether a and b describe the same outline, regardless
// of starting point or traversal direction.
func PathsEqual(a, b Path) bool {
	na, nb := NormalizePath(a), NormalizePath(b)
	if len(na) != len(nb) {
		return false
	}
	forward, reverse := true, true
	for i := range na {
		if na[i] != nb[i] {
			forward = false
		}
		if na[i] != nb[len(nb)-1-i] {
			reverse = false
		}
	}
	return forward || reverse
}

// PathArraysEqual reports whether a and b hold the same outlines in any
// order, matching each path of a to a distinct path of b.
func PathArraysEqual(a, b []Path) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, pa := range a {
		found := false
		for i, pb := range b {
			if used[i] || !PathsEqual(pa, pb) {
				continue
			}
			used[i], found = true, true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// Contains reports whether pt lies inside p using the even-odd rule. Points
// exactly on an edge may land on either side.
func (p Path) Contains(pt Point) bool {
	pts := p.open()
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// PathsContain reports whether pt lies inside paths taken together under
// the even-odd rule, so a point inside a hole loop is outside.
func PathsContain(paths []Path, pt Point) bool {
	inside := false
	for _, p := range paths {
		if p.Contains(pt) {
			inside = !inside
		}
	}
	return inside
}

// Translate returns p moved by dx, dy.
func (p Path) Translate(dx, dy float64) Path {
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = Point{pt.X + dx, pt.Y + dy}
	}
	return out
}

// SVG renders p as SVG path data relative to origin, e.g. "M 0 0 L 4 0 Z".
func (p Path) SVG(origin Point) string {
	pts := p.open()
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, pt := range pts {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(formatCoord(pt.X - origin.X))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(pt.Y - origin.Y))
	}
	sb.WriteString(" Z")
	return sb.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
