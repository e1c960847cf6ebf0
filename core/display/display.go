// Package display binds a selector to a rendered document: hit-testing
// screen points to addresses, finding the addressed range currently in the
// viewport, and turning address ranges into on-screen rectangles.
package display

import (
	"slices"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/selector"
)

// Surface is the rendering side of a document. Rectangles are in client
// (viewport) coordinates. Methods report false when the backend cannot
// measure the node.
type Surface[N any] interface {
	ViewportSize() (width, height float64)
	ScrollOffset() (x, y float64)
	// NodeRect returns the bounding box of an element or a whole text node.
	NodeRect(n N) (geometry.Rect, bool)
	// TextRect returns the bounding box of the text between two offsets of
	// a text node.
	TextRect(n N, start, end int) (geometry.Rect, bool)
	// RangeRects returns one box per line fragment of a document range.
	RangeRects(r TextRange[N]) ([]geometry.Rect, bool)
	// LineHeight returns the line height of body paragraphs as currently
	// styled.
	LineHeight() (float64, bool)
	// Select replaces the document selection with r.
	Select(r TextRange[N]) bool
}

// TextRange is a resolved document range.
type TextRange[N any] struct {
	Start       N
	StartOffset int
	End         N
	EndOffset   int
}

// RectHook adjusts every measured rectangle before it is used.
type RectHook func(geometry.Rect) geometry.Rect

// Options configure a View.
type Options struct {
	RectHook RectHook
}

// Mode selects which boundary InViewTextOffset looks for.
type Mode int

const (
	// First finds the start of the first word fully in view.
	First Mode = iota
	// Last finds the start of the first word that is not fully in view.
	Last
)

// View answers viewport queries for the document under a selector's root.
type View[N any] struct {
	sel     *selector.Selector[N]
	surface Surface[N]
	hook    RectHook
}

// New returns a view. opts may be nil.
func New[N any](sel *selector.Selector[N], surface Surface[N], opts *Options) *View[N] {
	v := &View[N]{sel: sel, surface: surface}
	if opts != nil {
		v.hook = opts.RectHook
	}
	return v
}

// Selector returns the selector the view resolves addresses with.
func (v *View[N]) Selector() *selector.Selector[N] { return v.sel }

// Surface returns the rendering backend.
func (v *View[N]) Surface() Surface[N] { return v.surface }

func (v *View[N]) preprocess(r geometry.Rect) geometry.Rect {
	if v.hook == nil {
		return r
	}
	return v.hook(r)
}

func (v *View[N]) tree() node.Tree[N] { return v.sel.Tree() }

func (v *View[N]) windowRect() geometry.Rect {
	w, h := v.surface.ViewportSize()
	return geometry.Rect{Width: w, Height: h}
}

// inView reports whether r is visible. Empty rectangles never are. With
// contain set r must lie entirely inside the viewport.
func (v *View[N]) inView(r geometry.Rect, contain bool) bool {
	if r.Empty() {
		return false
	}
	if contain {
		return v.windowRect().Contains(r)
	}
	return v.windowRect().Intersects(r)
}

func (v *View[N]) nodeRect(n N) geometry.Rect {
	switch v.tree().NodeType(n) {
	case node.Element, node.Text:
		if r, ok := v.surface.NodeRect(n); ok {
			return v.preprocess(r)
		}
	}
	return geometry.Rect{}
}

// textChild returns n if it is text, or its first text descendant.
func (v *View[N]) textChild(n N) (N, bool) {
	t := v.tree()
	switch t.NodeType(n) {
	case node.Text:
		return n, true
	case node.Element:
		for _, c := range t.Children(n) {
			if tc, ok := v.textChild(c); ok {
				return tc, true
			}
		}
	}
	var zero N
	return zero, false
}

func (v *View[N]) leaves(root N) []N {
	return node.LeafNodes(v.tree(), root, nil)
}

// hit finds the leaf under root whose text has a word containing p.
func (v *View[N]) hit(p geometry.Point, root N) (leaf N, word Span, ok bool) {
	for _, l := range v.leaves(root) {
		text, found := v.textChild(l)
		if !found {
			continue
		}
		for w := range Words(v.tree().TextContent(text)) {
			r, measured := v.surface.TextRect(text, w.Start, w.End)
			if !measured {
				continue
			}
			if v.preprocess(r).ContainsPoint(p) {
				return l, w, true
			}
		}
	}
	var zero N
	return zero, Span{}, false
}

// AddressForClientPoint returns the address of the leaf node holding the
// word under p.
func (v *View[N]) AddressForClientPoint(p geometry.Point) (address.Steps, bool) {
	return v.AddressForClientPointIn(p, v.sel.Root())
}

// AddressForClientPointIn is AddressForClientPoint restricted to the leaves
// under focus.
func (v *View[N]) AddressForClientPointIn(p geometry.Point, focus N) (address.Steps, bool) {
	leaf, _, ok := v.hit(p, focus)
	if !ok {
		return nil, false
	}
	return v.sel.AddressFromNode(leaf)
}

// AddressRangeForClientPoint returns the start and end of the word under p.
func (v *View[N]) AddressRangeForClientPoint(p geometry.Point) (start, end address.Full, ok bool) {
	return v.AddressRangeForClientPointIn(p, v.sel.Root())
}

// AddressRangeForClientPointIn is AddressRangeForClientPoint restricted to
// the leaves under focus.
func (v *View[N]) AddressRangeForClientPointIn(p geometry.Point, focus N) (start, end address.Full, ok bool) {
	leaf, w, found := v.hit(p, focus)
	if !found {
		return address.Full{}, address.Full{}, false
	}
	steps, ok := v.sel.AddressFromNode(leaf)
	if !ok {
		return address.Full{}, address.Full{}, false
	}
	return address.At(steps, w.Start), address.At(steps, w.End), true
}

// InViewTextOffset scans the words of a text node. In First mode it returns
// the start of the first word entirely inside the viewport; in Last mode the
// start of the first word that is not.
func (v *View[N]) InViewTextOffset(text N, mode Mode) (int, bool) {
	for w := range Words(v.tree().TextContent(text)) {
		r, ok := v.surface.TextRect(text, w.Start, w.End)
		if !ok {
			continue
		}
		visible := v.inView(v.preprocess(r), true)
		if (mode == First) == visible {
			return w.Start, true
		}
	}
	return 0, false
}

// InViewLeafNodes returns the leaves under the root whose boxes overlap the
// viewport, in document order.
func (v *View[N]) InViewLeafNodes() []N {
	var out []N
	for _, l := range v.leaves(v.sel.Root()) {
		if v.inView(v.nodeRect(l), false) {
			out = append(out, l)
		}
	}
	return out
}

// InViewAddresses returns the range of the document visible in the
// viewport: from the top-most visible leaf to the bottom-most, with text
// offsets narrowed to whole words where the leaves hold text.
func (v *View[N]) InViewAddresses() (start, end address.Full, ok bool) {
	type placed struct {
		n N
		y float64
	}
	var leaves []placed
	for _, l := range v.InViewLeafNodes() {
		leaves = append(leaves, placed{l, v.nodeRect(l).Y})
	}
	if len(leaves) == 0 {
		return address.Full{}, address.Full{}, false
	}
	slices.SortStableFunc(leaves, func(a, b placed) int {
		switch {
		case a.y < b.y:
			return -1
		case a.y > b.y:
			return 1
		}
		return 0
	})

	first, last := leaves[0].n, leaves[len(leaves)-1].n
	startSteps, ok := v.sel.AddressFromNode(first)
	if !ok {
		return address.Full{}, address.Full{}, false
	}
	endSteps, ok := v.sel.AddressFromNode(last)
	if !ok {
		return address.Full{}, address.Full{}, false
	}
	start, end = address.Full{Steps: startSteps}, address.Full{Steps: endSteps}

	if text, found := v.textChild(first); found {
		if off, found := v.InViewTextOffset(text, First); found {
			start = start.WithOffset(off)
		}
	}
	if text, found := v.textChild(last); found {
		if off, found := v.InViewTextOffset(text, Last); found {
			end = end.WithOffset(off)
		}
	}
	return start, end, true
}

// TextRangeFromAddresses resolves two addresses to a document range. A
// missing start offset means 0 and a missing end offset means 1.
func (v *View[N]) TextRangeFromAddresses(start, end address.Full) (TextRange[N], bool) {
	s, ok := v.sel.NodeFromAddress(start.Steps)
	if !ok {
		return TextRange[N]{}, false
	}
	e, ok := v.sel.NodeFromAddress(end.Steps)
	if !ok {
		return TextRange[N]{}, false
	}
	r := TextRange[N]{Start: s, End: e, EndOffset: 1}
	if start.HasOffset {
		r.StartOffset = start.Offset
	}
	if end.HasOffset {
		r.EndOffset = end.Offset
	}
	return r, true
}

// RectsForRange returns the line-fragment boxes of the range in document
// coordinates (client coordinates plus the scroll offset).
func (v *View[N]) RectsForRange(start, end address.Full) []geometry.Rect {
	r, ok := v.TextRangeFromAddresses(start, end)
	if !ok {
		return nil
	}
	rects, ok := v.surface.RangeRects(r)
	if !ok {
		return nil
	}
	sx, sy := v.surface.ScrollOffset()
	out := make([]geometry.Rect, 0, len(rects))
	for _, rect := range rects {
		out = append(out, v.preprocess(rect).Translate(sx, sy))
	}
	return out
}

// BoundingRectForRange returns the bounding box of RectsForRange.
func (v *View[N]) BoundingRectForRange(start, end address.Full) (geometry.Rect, bool) {
	return geometry.Bounds(v.RectsForRange(start, end))
}

// SetDocumentSelection selects the range in the rendered document.
func (v *View[N]) SetDocumentSelection(start, end address.Full) bool {
	r, ok := v.TextRangeFromAddresses(start, end)
	if !ok {
		return false
	}
	return v.surface.Select(r)
}
