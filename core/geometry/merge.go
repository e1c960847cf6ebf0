package geometry

import (
	"slices"
)

// MergeRects returns the closed outlines of the union of rects. Rectangles
// that overlap or share an edge belong to the same group. A group of one
// rectangle yields its clockwise corner path; larger groups yield the
// boundary of their union traced on the grid of their edges, one path per
// boundary loop. Under the even-odd rule the paths together cover exactly
// the union; see PathsContain.
//
// Components whose boundary cannot be traced are dropped.
func MergeRects(rects []Rect) []Path {
	kept := dropContained(rects)
	var paths []Path
	for _, group := range components(kept) {
		if len(group) == 1 {
			paths = append(paths, group[0].Corners())
			continue
		}
		paths = append(paths, unionOutlines(group)...)
	}
	return paths
}

// dropContained removes every rectangle lying inside a different
// rectangle. Identical copies do not remove each other.
func dropContained(rects []Rect) []Rect {
	out := make([]Rect, 0, len(rects))
	for i, r := range rects {
		contained := false
		for j, o := range rects {
			if i == j || o == r {
				continue
			}
			if o.Contains(r) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, r)
		}
	}
	return out
}

// components groups rects breadth-first by the Touches relation.
func components(rects []Rect) [][]Rect {
	var groups [][]Rect
	seen := make([]bool, len(rects))
	for i := range rects {
		if seen[i] {
			continue
		}
		seen[i] = true
		group := []Rect{rects[i]}
		queue := []int{i}
		for len(queue) > 0 {
			cur := rects[queue[0]]
			queue = queue[1:]
			for j, r := range rects {
				if seen[j] || !cur.Touches(r) {
					continue
				}
				seen[j] = true
				group = append(group, r)
				queue = append(queue, j)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

type direction int

const (
	right direction = iota
	down
	left
	up
)

func directionOf(from, to Point) direction {
	switch {
	case to.X > from.X:
		return right
	case to.Y > from.Y:
		return down
	case to.X < from.X:
		return left
	}
	return up
}

// turn ranks the change of heading from cur to next; lower is preferred.
func turn(cur, next direction) int {
	return int((next - cur + 4) % 4)
}

type segment struct {
	start, end Point
	horizontal bool
}

// grid is the cell decomposition of a group of rectangles.
type grid struct {
	xs, ys  []float64
	covered [][]bool // [row][col]
}

func newGrid(rects []Rect) *grid {
	g := &grid{}
	for _, r := range rects {
		g.xs = append(g.xs, r.Left(), r.Right())
		g.ys = append(g.ys, r.Top(), r.Bottom())
	}
	slices.Sort(g.xs)
	slices.Sort(g.ys)
	g.xs = slices.Compact(g.xs)
	g.ys = slices.Compact(g.ys)

	g.covered = make([][]bool, max(len(g.ys)-1, 0))
	for i := range g.covered {
		g.covered[i] = make([]bool, max(len(g.xs)-1, 0))
		for j := range g.covered[i] {
			cell := NewRect(g.xs[j], g.ys[i], g.xs[j+1], g.ys[i+1])
			for _, r := range rects {
				if r.Contains(cell) {
					g.covered[i][j] = true
					break
				}
			}
		}
	}
	return g
}

func (g *grid) cell(row, col int) bool {
	if row < 0 || col < 0 || row >= len(g.covered) || col >= len(g.covered[row]) {
		return false
	}
	return g.covered[row][col]
}

// segments returns the maximal boundary runs of the covered region:
// horizontal runs top to bottom, then vertical runs left to right.
func (g *grid) segments() []segment {
	var segs []segment
	cols, rows := len(g.xs)-1, len(g.ys)-1

	for i, y := range g.ys {
		runStart := -1
		for j := 0; j < cols; j++ {
			if g.cell(i-1, j) != g.cell(i, j) {
				if runStart < 0 {
					runStart = j
				}
				continue
			}
			if runStart >= 0 {
				segs = appendSegment(segs, segment{Point{g.xs[runStart], y}, Point{g.xs[j], y}, true})
				runStart = -1
			}
		}
		if runStart >= 0 {
			segs = appendSegment(segs, segment{Point{g.xs[runStart], y}, Point{g.xs[cols], y}, true})
		}
	}

	for j, x := range g.xs {
		runStart := -1
		for i := 0; i < rows; i++ {
			if g.cell(i, j-1) != g.cell(i, j) {
				if runStart < 0 {
					runStart = i
				}
				continue
			}
			if runStart >= 0 {
				segs = appendSegment(segs, segment{Point{x, g.ys[runStart]}, Point{x, g.ys[i]}, false})
				runStart = -1
			}
		}
		if runStart >= 0 {
			segs = appendSegment(segs, segment{Point{x, g.ys[runStart]}, Point{x, g.ys[rows]}, false})
		}
	}
	return segs
}

func appendSegment(segs []segment, s segment) []segment {
	if slices.Contains(segs, s) {
		return segs
	}
	return append(segs, s)
}

// startSegment picks where tracing begins among the unused segments. A
// four-segment boundary starts on its downward left edge; anything else
// starts on the rightward horizontal run nearest the top-left corner.
func startSegment(segs []segment, used []bool) int {
	best, bestDist, fallback := -1, 0.0, -1
	for i, s := range segs {
		if used[i] {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		if len(segs) == 4 {
			if s.horizontal || s.end.Y <= s.start.Y {
				continue
			}
		} else if !s.horizontal || s.end.X <= s.start.X {
			continue
		}
		d := s.start.X + s.start.Y
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return fallback
	}
	return best
}

// unionOutlines traces the boundary of a group of rectangles, always
// taking the connected segment that turns least from the current heading.
// A boundary made of several loops, such as a group enclosing a hole,
// yields one closed path per loop.
func unionOutlines(rects []Rect) []Path {
	segs := newGrid(rects).segments()
	used := make([]bool, len(segs))
	var paths []Path
	for left := len(segs); left > 0; {
		p, n := trace(segs, used, startSegment(segs, used))
		left -= n
		if len(p) > 0 {
			paths = append(paths, p)
		}
	}
	return paths
}

// trace follows connected segments from segs[first] until none remains,
// marking them used. It returns the closed path and the segment count.
func trace(segs []segment, used []bool, first int) (Path, int) {
	used[first] = true
	n := 1
	path := Path{segs[first].start, segs[first].end}
	cur := segs[first].end
	heading := directionOf(segs[first].start, segs[first].end)

	for {
		next, reverse, bestTurn := -1, false, 0
		for i, s := range segs {
			if used[i] {
				continue
			}
			var t int
			var rev bool
			switch cur {
			case s.start:
				t = turn(heading, directionOf(s.start, s.end))
			case s.end:
				t, rev = turn(heading, directionOf(s.end, s.start)), true
			default:
				continue
			}
			if next < 0 || t < bestTurn {
				next, reverse, bestTurn = i, rev, t
			}
		}
		if next < 0 {
			break
		}
		used[next] = true
		n++
		from, to := segs[next].start, segs[next].end
		if reverse {
			from, to = to, from
		}
		if path[len(path)-1] != to {
			path = append(path, to)
		}
		cur, heading = to, directionOf(from, to)
	}

	path = slices.Compact(path)
	if len(path) < 3 {
		return nil, n
	}
	if path[0] != path[len(path)-1] {
		path = append(path, path[0])
	}
	return path, n
}
