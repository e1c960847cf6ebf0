package display_test

import (
	"slices"
	"testing"

	"github.com/antchfx/xmlquery"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/display"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/selector"
	"github.com/anthonytopper/customer-web-xp/core/xml"
)

const (
	charWidth  = 10.0
	lineHeight = 20.0
)

const lines = `<html><body>` +
	`<p>alpha beta gamma</p>` +
	`<p>delta epsilon</p>` +
	`<p>zeta eta theta</p>` +
	`</body></html>`

// page lays every text node out on its own line in a monospace font.
type page struct {
	tree             *xml.Tree
	texts            []*xmlquery.Node
	width, height    float64
	scrollX, scrollY float64
	lineHeight       float64
	selected         *display.TextRange[*xmlquery.Node]
}

func (p *page) line(n *xmlquery.Node) int {
	return slices.Index(p.texts, n)
}

func (p *page) length(n *xmlquery.Node) int {
	return node.TextLength(p.tree.TextContent(n))
}

func (p *page) rect(line, start, end int) geometry.Rect {
	return geometry.Rect{
		X:      float64(start)*charWidth - p.scrollX,
		Y:      float64(line)*lineHeight - p.scrollY,
		Width:  float64(end-start) * charWidth,
		Height: lineHeight,
	}
}

func (p *page) ViewportSize() (float64, float64) { return p.width, p.height }
func (p *page) ScrollOffset() (float64, float64) { return p.scrollX, p.scrollY }

func (p *page) NodeRect(n *xmlquery.Node) (geometry.Rect, bool) {
	if i := p.line(n); i >= 0 {
		return p.rect(i, 0, p.length(n)), true
	}
	var rects []geometry.Rect
	for _, d := range node.Descendants(node.Tree[*xmlquery.Node](p.tree), n) {
		if i := p.line(d); i >= 0 {
			rects = append(rects, p.rect(i, 0, p.length(d)))
		}
	}
	return geometry.Bounds(rects)
}

func (p *page) TextRect(n *xmlquery.Node, start, end int) (geometry.Rect, bool) {
	i := p.line(n)
	if i < 0 {
		return geometry.Rect{}, false
	}
	return p.rect(i, start, end), true
}

func (p *page) RangeRects(r display.TextRange[*xmlquery.Node]) ([]geometry.Rect, bool) {
	first, last := p.line(r.Start), p.line(r.End)
	if first < 0 || last < first {
		return nil, false
	}
	var out []geometry.Rect
	for i := first; i <= last; i++ {
		start, end := 0, p.length(p.texts[i])
		if i == first {
			start = r.StartOffset
		}
		if i == last {
			end = r.EndOffset
		}
		out = append(out, p.rect(i, start, end))
	}
	return out, true
}

func (p *page) LineHeight() (float64, bool) { return p.lineHeight, p.lineHeight > 0 }

func (p *page) Select(r display.TextRange[*xmlquery.Node]) bool {
	p.selected = &r
	return true
}

func setup(t *testing.T, opts *display.Options) (*page, *display.View[*xmlquery.Node]) {
	t.Helper()
	doc, err := xml.Parse([]byte(lines))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tree := node.Tree[*xmlquery.Node](doc.Tree())
	p := &page{tree: doc.Tree(), width: 120, height: 40}
	for _, n := range node.Descendants(tree, doc.Body()) {
		if tree.NodeType(n) == node.Text {
			p.texts = append(p.texts, n)
		}
	}
	if len(p.texts) != 3 {
		t.Fatalf("fixture has %d text nodes, want 3", len(p.texts))
	}
	sel := selector.New(doc.Body(), tree, nil)
	return p, display.New(sel, display.Surface[*xmlquery.Node](p), opts)
}

func TestWords(t *testing.T) {
	words := display.Words("a bc  d")
	want := []display.Span{{0, 1}, {2, 4}, {5, 5}, {6, 7}}
	for pass := range 2 {
		var got []display.Span
		for w := range words {
			got = append(got, w)
		}
		if !slices.Equal(got, want) {
			t.Errorf("pass %d: Words() = %v, want %v", pass, got, want)
		}
	}

	var got []display.Span
	for w := range display.Words("é 😀x") {
		got = append(got, w)
	}
	if want := []display.Span{{0, 1}, {2, 5}}; !slices.Equal(got, want) {
		t.Errorf("Words() counts UTF-16 units: got %v, want %v", got, want)
	}
}

func TestAddressForClientPoint(t *testing.T) {
	_, v := setup(t, nil)

	steps, ok := v.AddressForClientPoint(geometry.Point{X: 65, Y: 5})
	if !ok || !steps.Equal(address.Steps{2, 1}) {
		t.Errorf("AddressForClientPoint() = %v, %v, want [2 1]", steps, ok)
	}

	start, end, ok := v.AddressRangeForClientPoint(geometry.Point{X: 65, Y: 5})
	if !ok {
		t.Fatal("AddressRangeForClientPoint() ok = false")
	}
	if start.String() != "/2/1:6" || end.String() != "/2/1:10" {
		t.Errorf("AddressRangeForClientPoint() = %s, %s, want /2/1:6, /2/1:10", start, end)
	}

	if _, ok := v.AddressForClientPoint(geometry.Point{X: 55, Y: 5}); ok {
		t.Error("AddressForClientPoint() between words ok = true")
	}
}

func TestInViewAddresses(t *testing.T) {
	p, v := setup(t, nil)

	leaves := v.InViewLeafNodes()
	if len(leaves) != 2 || leaves[0] != p.texts[0] || leaves[1] != p.texts[1] {
		t.Errorf("InViewLeafNodes() = %v, want the first two lines", leaves)
	}

	start, end, ok := v.InViewAddresses()
	if !ok {
		t.Fatal("InViewAddresses() ok = false")
	}
	if start.String() != "/2/1:0" {
		t.Errorf("start = %s, want /2/1:0", start)
	}
	if end.String() != "/4/1:6" {
		t.Errorf("end = %s, want /4/1:6", end)
	}

	p.scrollX = 60
	start, end, ok = v.InViewAddresses()
	if !ok {
		t.Fatal("InViewAddresses() after scroll ok = false")
	}
	if start.String() != "/2/1:6" {
		t.Errorf("start after scroll = %s, want /2/1:6", start)
	}
	if end.String() != "/4/1:0" {
		t.Errorf("end after scroll = %s, want /4/1:0", end)
	}

	p.scrollY = 500
	if _, _, ok := v.InViewAddresses(); ok {
		t.Error("InViewAddresses() with nothing visible ok = true")
	}
}

func TestInViewTextOffset(t *testing.T) {
	p, v := setup(t, nil)
	if off, ok := v.InViewTextOffset(p.texts[1], display.Last); !ok || off != 6 {
		t.Errorf("InViewTextOffset(Last) = %d, %v, want 6", off, ok)
	}
	if _, ok := v.InViewTextOffset(p.texts[2], display.First); ok {
		t.Error("InViewTextOffset(First) on a hidden line ok = true")
	}
}

func TestRectsForRange(t *testing.T) {
	p, v := setup(t, nil)
	start, end := address.At(address.Steps{2, 1}, 6), address.At(address.Steps{4, 1}, 5)
	want := []geometry.Rect{{X: 60, Y: 0, Width: 100, Height: 20}, {X: 0, Y: 20, Width: 50, Height: 20}}

	if got := v.RectsForRange(start, end); !slices.Equal(got, want) {
		t.Errorf("RectsForRange() = %v, want %v", got, want)
	}

	// document coordinates do not move when the page scrolls
	p.scrollY = 100
	if got := v.RectsForRange(start, end); !slices.Equal(got, want) {
		t.Errorf("RectsForRange() after scroll = %v, want %v", got, want)
	}

	b, ok := v.BoundingRectForRange(start, end)
	if !ok || b != (geometry.Rect{X: 0, Y: 0, Width: 160, Height: 40}) {
		t.Errorf("BoundingRectForRange() = %v, %v", b, ok)
	}

	if got := v.RectsForRange(address.Of(9, 1), end); got != nil {
		t.Errorf("RectsForRange() of an unresolved address = %v, want nil", got)
	}
}

func TestTextRangeFromAddresses(t *testing.T) {
	p, v := setup(t, nil)
	r, ok := v.TextRangeFromAddresses(address.Of(2, 1), address.Of(4, 1))
	if !ok {
		t.Fatal("TextRangeFromAddresses() ok = false")
	}
	if r.Start != p.texts[0] || r.End != p.texts[1] {
		t.Error("TextRangeFromAddresses() resolved the wrong nodes")
	}
	if r.StartOffset != 0 || r.EndOffset != 1 {
		t.Errorf("offsets = %d, %d, want 0, 1", r.StartOffset, r.EndOffset)
	}
	if _, ok := v.TextRangeFromAddresses(address.Of(2, 1), address.Of(2, 3)); ok {
		t.Error("TextRangeFromAddresses() with a missing node ok = true")
	}
}

func TestSetDocumentSelection(t *testing.T) {
	p, v := setup(t, nil)
	if !v.SetDocumentSelection(address.At(address.Steps{2, 1}, 2), address.At(address.Steps{6, 1}, 4)) {
		t.Fatal("SetDocumentSelection() = false")
	}
	if p.selected == nil || p.selected.Start != p.texts[0] || p.selected.EndOffset != 4 {
		t.Errorf("selection = %+v", p.selected)
	}
}

func TestLineHeightHook(t *testing.T) {
	height, known := 0.0, false
	hook := display.LineHeightHook(func() (float64, bool) { return height, known })

	r := geometry.Rect{X: 1, Y: 2, Width: 30, Height: 7}
	if got := hook(r); got != r {
		t.Errorf("hook() with unknown line height = %v, want %v", got, r)
	}

	height, known = 24, true
	if got := hook(r); got.Height != 24 || got.X != 1 || got.Width != 30 {
		t.Errorf("hook() = %v, want height 24", got)
	}
	if got := hook(geometry.Rect{}); got != (geometry.Rect{}) {
		t.Errorf("hook() of an empty rect = %v", got)
	}

	height = 30
	if got := hook(r); got.Height != 30 {
		t.Errorf("hook() after restyle height = %v, want 30", got.Height)
	}

	known = false
	if got := hook(r); got.Height != 30 {
		t.Errorf("hook() keeps the last known height: got %v", got.Height)
	}
}

func TestViewAppliesRectHook(t *testing.T) {
	styled := &page{lineHeight: 24}
	_, v := setup(t, &display.Options{RectHook: display.LineHeightHook(styled.LineHeight)})
	rects := v.RectsForRange(address.At(address.Steps{2, 1}, 0), address.At(address.Steps{2, 1}, 5))
	if len(rects) != 1 {
		t.Fatalf("RectsForRange() returned %d rects, want 1", len(rects))
	}
	if rects[0].Height != 24 {
		t.Errorf("rect height = %v, want 24", rects[0].Height)
	}
}
