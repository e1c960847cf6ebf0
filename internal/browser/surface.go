package browser

import (
	"github.com/anthonytopper/customer-web-xp/core/display"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
)

// Surface measures the live layout.
type Surface struct {
	doc *Document
}

var _ display.Surface[Node] = (*Surface)(nil)

// rangeOf builds a Range from the four TextRange arguments.
const rangeOf = `const rangeOf = (s, so, e, eo) => {
	const a = R.node(s), b = R.node(e);
	if (!a || !b) return null;
	const r = document.createRange();
	r.setStart(a, so);
	r.setEnd(b, eo);
	return r;
};
const box = r => ({x: r.x, y: r.y, width: r.width, height: r.height});
const json = r => JSON.stringify(box(r));`

func (s *Surface) pair(op, js string, args ...any) (float64, float64) {
	var v [2]float64
	s.doc.decode(op, js, &v, args...)
	return v[0], v[1]
}

func (s *Surface) ViewportSize() (float64, float64) {
	return s.pair("viewportSize", script("", "return JSON.stringify([window.innerWidth, window.innerHeight]);"))
}

func (s *Surface) ScrollOffset() (float64, float64) {
	return s.pair("scrollOffset", script("", "return JSON.stringify([window.scrollX, window.scrollY]);"))
}

func (s *Surface) rect(op, js string, args ...any) (geometry.Rect, bool) {
	var r geometry.Rect
	if !s.doc.decode(op, js, &r, args...) {
		return geometry.Rect{}, false
	}
	return r, true
}

func (s *Surface) NodeRect(n Node) (geometry.Rect, bool) {
	return s.rect("nodeRect", script("i", rangeOf+`
		const n = R.node(i);
		if (!n) return null;
		if (n.nodeType === 1) return json(n.getBoundingClientRect());
		const r = document.createRange();
		r.selectNodeContents(n);
		return json(r.getBoundingClientRect());`), n)
}

func (s *Surface) TextRect(n Node, start, end int) (geometry.Rect, bool) {
	return s.rect("textRect", script("i, so, eo", rangeOf+`
		const r = rangeOf(i, so, i, eo);
		return r ? json(r.getBoundingClientRect()) : null;`), n, start, end)
}

func (s *Surface) RangeRects(tr display.TextRange[Node]) ([]geometry.Rect, bool) {
	var rects []geometry.Rect
	ok := s.doc.decode("rangeRects", script("s, so, e, eo", rangeOf+`
		const r = rangeOf(s, so, e, eo);
		return r ? JSON.stringify(Array.from(r.getClientRects(), box)) : null;`),
		&rects, tr.Start, tr.StartOffset, tr.End, tr.EndOffset)
	return rects, ok
}

// LineHeight reads the computed line height of the first paragraph, or of
// body when there is none. A "normal" line height is unknown.
func (s *Surface) LineHeight() (float64, bool) {
	res, ok := s.doc.eval("lineHeight", script("", `
		const el = document.querySelector("p") ?? document.body;
		const h = parseFloat(getComputedStyle(el).lineHeight);
		return Number.isFinite(h) ? h : null;`))
	if !ok || res.Value.Nil() {
		return 0, false
	}
	return res.Value.Num(), true
}

func (s *Surface) Select(tr display.TextRange[Node]) bool {
	return s.doc.truth("select", script("s, so, e, eo", rangeOf+`
		const r = rangeOf(s, so, e, eo);
		if (!r) return false;
		const sel = window.getSelection();
		sel.removeAllRanges();
		sel.addRange(r);
		return true;`), tr.Start, tr.StartOffset, tr.End, tr.EndOffset)
}
