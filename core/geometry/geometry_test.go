package geometry

import (
	"math/rand/v2"
	"testing"
)

func pts(coords ...float64) Path {
	p := make(Path, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		p = append(p, Point{coords[i], coords[i+1]})
	}
	return p
}

func TestMergeRectsEmpty(t *testing.T) {
	if got := MergeRects(nil); len(got) != 0 {
		t.Errorf("MergeRects(nil) = %v, want empty", got)
	}
}

func TestMergeRectsSingle(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 5}
	got := MergeRects([]Rect{r})
	if len(got) != 1 {
		t.Fatalf("MergeRects() returned %d paths, want 1", len(got))
	}
	want := pts(2, 3, 6, 3, 6, 8, 2, 8, 2, 3)
	if len(got[0]) != 5 {
		t.Fatalf("len(path) = %d, want 5", len(got[0]))
	}
	for i := range want {
		if got[0][i] != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, got[0][i], want[i])
		}
	}
}

func TestMergeRectsOverlapping(t *testing.T) {
	got := MergeRects([]Rect{
		{X: 1, Y: 1, Width: 2, Height: 2},
		{X: 2, Y: 2, Width: 2, Height: 2},
	})
	want := pts(1, 1, 3, 1, 3, 2, 4, 2, 4, 4, 2, 4, 2, 3, 1, 3, 1, 1)
	if len(got) != 1 {
		t.Fatalf("MergeRects() returned %d paths, want 1", len(got))
	}
	if len(got[0]) != len(want) {
		t.Fatalf("path = %v, want %v", got[0], want)
	}
	for i := range want {
		if got[0][i] != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, got[0][i], want[i])
		}
	}
}

func TestMergeRectsTextLines(t *testing.T) {
	got := MergeRects([]Rect{
		NewRect(3, 0, 10, 1),
		NewRect(0, 1, 10, 2),
		NewRect(0, 2, 6, 3),
	})
	want := []Path{pts(0, 1, 3, 1, 3, 0, 10, 0, 10, 2, 6, 2, 6, 3, 0, 3, 0, 1)}
	if !PathArraysEqual(got, want) {
		t.Errorf("MergeRects() = %v, want %v", got, want)
	}
	if got[0][0] != (Point{0, 1}) {
		t.Errorf("path starts at %v, want (0,1)", got[0][0])
	}
}

func TestMergeRectsDisjointAndContained(t *testing.T) {
	outer := NewRect(0, 0, 10, 10)
	got := MergeRects([]Rect{
		outer,
		NewRect(2, 2, 4, 4),
		NewRect(20, 0, 30, 5),
	})
	want := []Path{outer.Corners(), NewRect(20, 0, 30, 5).Corners()}
	if !PathArraysEqual(got, want) {
		t.Errorf("MergeRects() = %v, want %v", got, want)
	}
}

func TestMergeRectsIdenticalDuplicates(t *testing.T) {
	r := NewRect(0, 0, 4, 2)
	got := MergeRects([]Rect{r, r})
	if !PathArraysEqual(got, []Path{r.Corners()}) {
		t.Errorf("MergeRects() = %v, want %v", got, r.Corners())
	}
}

func TestMergeRectsSharedEdge(t *testing.T) {
	got := MergeRects([]Rect{NewRect(0, 0, 5, 2), NewRect(5, 0, 9, 2)})
	want := []Path{NewRect(0, 0, 9, 2).Corners()}
	if !PathArraysEqual(got, want) {
		t.Errorf("MergeRects() = %v, want %v", got, want)
	}
}

// textLines builds rows of line-fragment rectangles in which every row
// overlaps the next horizontally, the way a multi-line selection does.
func textLines(rng *rand.Rand) []Rect {
	const height = 10
	var rects []Rect
	rows := 2 + rng.IntN(4)
	prevL, prevR := 0, 0
	for i := range rows {
		var l, r int
		for {
			l = rng.IntN(90)
			r = l + 2 + rng.IntN(100-l-1)
			if i == 0 || max(l, prevL) < min(r, prevR) {
				break
			}
		}
		prevL, prevR = l, r
		top := float64(i * height)
		if rng.IntN(2) == 0 || r-l < 2 {
			rects = append(rects, NewRect(float64(l), top, float64(r), top+height))
			continue
		}
		// split the row into two fragments sharing an edge
		m := l + 1 + rng.IntN(r-l-1)
		rects = append(rects,
			NewRect(float64(l), top, float64(m), top+height),
			NewRect(float64(m), top, float64(r), top+height),
		)
	}
	return rects
}

// checkUnion samples the half-integer points around rects and fails when
// the merged paths disagree with the naive union of rects.
func checkUnion(t *testing.T, rects []Rect, paths []Path) {
	t.Helper()
	b, _ := Bounds(rects)
	for y := b.Top() - 1.5; y < b.Bottom()+2; y++ {
		for x := b.Left() - 1.5; x < b.Right()+2; x++ {
			p := Point{x, y}
			inUnion := false
			for _, r := range rects {
				if r.ContainsPoint(p) {
					inUnion = true
					break
				}
			}
			if got := PathsContain(paths, p); got != inUnion {
				t.Fatalf("PathsContain(%v) = %v, want %v (rects %v, paths %v)",
					p, got, inUnion, rects, paths)
			}
		}
	}
}

func TestMergeRectsUnionInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 60 {
		rects := textLines(rng)
		paths := MergeRects(rects)
		if len(paths) != 1 {
			t.Fatalf("trial %d: MergeRects(%v) returned %d paths, want 1", trial, rects, len(paths))
		}
		checkUnion(t, rects, paths)

		shuffled := append([]Rect(nil), rects...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if again := MergeRects(shuffled); !PathArraysEqual(again, paths) {
			t.Errorf("trial %d: result depends on input order: %v vs %v", trial, again, paths)
		}
	}
}

func TestMergeRectsUnionInvariantRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for range 2000 {
		rects := make([]Rect, 1+rng.IntN(6))
		for i := range rects {
			rects[i] = Rect{
				X:      float64(rng.IntN(8)),
				Y:      float64(rng.IntN(8)),
				Width:  float64(1 + rng.IntN(6)),
				Height: float64(1 + rng.IntN(6)),
			}
		}
		checkUnion(t, rects, MergeRects(rects))
	}
}

func TestMergeRectsEnclosedHole(t *testing.T) {
	rects := []Rect{
		{X: 5, Y: 4, Width: 2, Height: 1},
		{X: 4, Y: 0, Width: 6, Height: 6},
		{X: 0, Y: 1, Width: 5, Height: 4},
		{X: 1, Y: 6, Width: 3, Height: 6},
		{X: 6, Y: 7, Width: 6, Height: 5},
		{X: 0, Y: 2, Width: 1, Height: 4},
	}
	paths := MergeRects(rects)
	checkUnion(t, rects, paths)

	if PathsContain(paths, Point{2.5, 5.5}) {
		t.Error("point in the enclosed hole is covered")
	}
	if !PathsContain(paths, Point{2.5, 9}) {
		t.Error("rect joined at a corner lost its area")
	}
}

func TestNormalizePath(t *testing.T) {
	p := pts(4, 0, 4, 2, 0, 2, 0, 0, 4, 0)
	got := NormalizePath(p)
	want := pts(0, 0, 4, 0, 4, 2, 0, 2, 0, 0)
	if len(got) != len(want) {
		t.Fatalf("NormalizePath() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizePath()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := NormalizePath(nil); got != nil {
		t.Errorf("NormalizePath(nil) = %v, want nil", got)
	}
}

func TestPathsEqual(t *testing.T) {
	a := pts(0, 0, 4, 0, 4, 2, 0, 2, 0, 0)
	tests := []struct {
		name string
		b    Path
		want bool
	}{
		{"same", a, true},
		{"rotated", pts(4, 2, 0, 2, 0, 0, 4, 0, 4, 2), true},
		{"reversed", pts(0, 0, 0, 2, 4, 2, 4, 0, 0, 0), true},
		{"unclosed", pts(4, 0, 4, 2, 0, 2, 0, 0), true},
		{"different", pts(0, 0, 5, 0, 5, 2, 0, 2, 0, 0), false},
		{"shorter", pts(0, 0, 4, 0, 0, 2, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathsEqual(a, tt.b); got != tt.want {
				t.Errorf("PathsEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathArraysEqual(t *testing.T) {
	a := NewRect(0, 0, 1, 1).Corners()
	b := NewRect(5, 5, 7, 7).Corners()
	if !PathArraysEqual([]Path{a, b}, []Path{b, a}) {
		t.Error("PathArraysEqual() order-sensitive")
	}
	if PathArraysEqual([]Path{a, a}, []Path{a, b}) {
		t.Error("PathArraysEqual() matched one path twice")
	}
	if PathArraysEqual([]Path{a}, []Path{a, b}) {
		t.Error("PathArraysEqual() ignored length")
	}
}

func TestPathSVG(t *testing.T) {
	p := NewRect(1, 1, 3, 2.5).Corners()
	got := p.SVG(Point{1, 1})
	want := "M 0 0 L 2 0 L 2 1.5 L 0 1.5 Z"
	if got != want {
		t.Errorf("SVG() = %q, want %q", got, want)
	}
	if got := Path(nil).SVG(Point{}); got != "" {
		t.Errorf("SVG() of empty = %q", got)
	}
}

func TestRectPredicates(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	tests := []struct {
		name                          string
		b                             Rect
		intersects, touches, contains bool
	}{
		{"inside", NewRect(2, 2, 4, 4), true, true, true},
		{"edge", NewRect(10, 0, 12, 5), false, true, false},
		{"corner", NewRect(10, 10, 12, 12), false, true, false},
		{"apart", NewRect(11, 0, 12, 5), false, false, false},
		{"overlap", NewRect(5, 5, 15, 15), true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.intersects {
				t.Errorf("Intersects() = %v, want %v", got, tt.intersects)
			}
			if got := a.Touches(tt.b); got != tt.touches {
				t.Errorf("Touches() = %v, want %v", got, tt.touches)
			}
			if got := a.Contains(tt.b); got != tt.contains {
				t.Errorf("Contains() = %v, want %v", got, tt.contains)
			}
		})
	}
}

func TestBoundsAndDedupe(t *testing.T) {
	rects := []Rect{NewRect(0, 0, 2, 2), NewRect(5, 1, 6, 8), NewRect(0, 0, 2, 2)}
	b, ok := Bounds(rects)
	if !ok || b != NewRect(0, 0, 6, 8) {
		t.Errorf("Bounds() = %v, %v", b, ok)
	}
	if _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) ok = true")
	}
	if got := Dedupe(rects); len(got) != 2 {
		t.Errorf("Dedupe() = %v, want 2 rects", got)
	}
	pb, ok := PathsBounds([]Path{NewRect(1, 1, 2, 2).Corners(), NewRect(-1, 3, 0, 4).Corners()})
	if !ok || pb != NewRect(-1, 1, 2, 4) {
		t.Errorf("PathsBounds() = %v, %v", pb, ok)
	}
}
