// Package verse indexes the verse markers of a scripture chapter. Markers
// are elements carrying a data-osisref attribute; a verse runs from its
// marker to the next one.
package verse

import (
	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/display"
	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/selector"
)

// RefAttr is the attribute that marks a verse.
const RefAttr = "data-osisref"

// Ref is one verse marker.
type Ref struct {
	// Attr is the raw attribute value, e.g. "Gen.1.3".
	Attr  string `json:"ref"`
	Verse int    `json:"verse"`
	// OSIS is the parsed reference; zero when Attr is not valid OSIS.
	OSIS OSISRef `json:"osis,omitzero"`
}

// Index answers verse queries over the tree under a selector's root. It
// re-reads the tree on every call.
type Index[N any] struct {
	sel *selector.Selector[N]
}

// New returns an index over sel's root.
func New[N any](sel *selector.Selector[N]) *Index[N] {
	return &Index[N]{sel: sel}
}

func (x *Index[N]) tree() node.Tree[N] { return x.sel.Tree() }

// markers returns the marker elements under n. A marker's own subtree is
// not searched.
func (x *Index[N]) markers(n N) []N {
	t := x.tree()
	if t.NodeType(n) != node.Element {
		return nil
	}
	if v, ok := t.Attr(n, RefAttr); ok && v != "" {
		return []N{n}
	}
	var out []N
	for _, c := range t.Children(n) {
		out = append(out, x.markers(c)...)
	}
	return out
}

// nearbyMarkers searches n's subtree, then each ancestor's, until some
// marker is found.
func (x *Index[N]) nearbyMarkers(n N) []N {
	t := x.tree()
	for {
		if t.NodeType(n) == node.Element {
			if found := x.markers(n); len(found) > 0 {
				return found
			}
		}
		parent, ok := t.Parent(n)
		if !ok {
			return nil
		}
		n = parent
	}
}

// markerFor picks the marker governing n: the last marker before it, or
// failing that the first marker after it.
func (x *Index[N]) markerFor(n N) (N, bool) {
	t := x.tree()
	found := x.nearbyMarkers(n)
	switch len(found) {
	case 0:
		var zero N
		return zero, false
	case 1:
		return found[0], true
	}
	for i := len(found) - 1; i >= 0; i-- {
		if t.IsBefore(found[i], n) {
			return found[i], true
		}
	}
	for _, m := range found {
		if t.IsAfter(m, n) {
			return m, true
		}
	}
	var zero N
	return zero, false
}

func (x *Index[N]) ref(marker N) (Ref, bool) {
	attr, ok := x.tree().Attr(marker, RefAttr)
	if !ok {
		return Ref{}, false
	}
	v, osis, ok := verseNumber(attr)
	if !ok {
		return Ref{}, false
	}
	return Ref{Attr: attr, Verse: v, OSIS: osis}, true
}

// Refs returns every verse marker in document order.
func (x *Index[N]) Refs() []Ref {
	var out []Ref
	for _, m := range x.markers(x.sel.Root()) {
		if r, ok := x.ref(m); ok {
			out = append(out, r)
		}
	}
	return out
}

// RefFromAddress returns the verse containing the node at addr.
func (x *Index[N]) RefFromAddress(addr address.Full) (Ref, bool) {
	n, ok := x.sel.NodeFromAddress(addr.Steps)
	if !ok {
		return Ref{}, false
	}
	m, ok := x.markerFor(n)
	if !ok {
		return Ref{}, false
	}
	return x.ref(m)
}

// RangeForVerse returns the range from verse's marker to the next marker.
// The last verse runs to the end of the document.
func (x *Index[N]) RangeForVerse(verse int) (start, end address.Full, ok bool) {
	markers := x.markers(x.sel.Root())
	for i, m := range markers {
		r, found := x.ref(m)
		if !found || r.Verse != verse {
			continue
		}
		steps, found := x.sel.AddressFromNode(m)
		if !found {
			return address.Full{}, address.Full{}, false
		}
		start = address.At(steps, 0)
		if i+1 < len(markers) {
			next, found := x.sel.AddressFromNode(markers[i+1])
			if !found {
				return address.Full{}, address.Full{}, false
			}
			return start, address.At(next, 0), true
		}
		return start, x.sel.EndAddressWithOffset(), true
	}
	return address.Full{}, address.Full{}, false
}

// ExtractVerse returns the text of one verse, marker included.
func (x *Index[N]) ExtractVerse(verse int) (string, bool) {
	start, end, ok := x.RangeForVerse(verse)
	if !ok {
		return "", false
	}
	return x.sel.ExtractTextRange(start, end), true
}

// ExtractVerseRange returns the text from the start of verse first through
// the end of verse last. A verse that is not found (or 0) leaves that side
// open: the text starts at the beginning or runs to the end.
func (x *Index[N]) ExtractVerseRange(first, last int) string {
	var start, end address.Full
	if s, _, ok := x.RangeForVerse(first); ok {
		start = s
	}
	if _, e, ok := x.RangeForVerse(last); ok {
		end = e
	}
	return x.sel.ExtractTextRange(start, end)
}

// InViewRange returns the first and last verses whose markers are on
// screen. Scanning stops at the first marker below the visible run, whose
// predecessor ends the range.
func (x *Index[N]) InViewRange(view *display.View[N]) (first, last int, ok bool) {
	_, height := view.Surface().ViewportSize()
	started := false
	current := 0
	for _, m := range x.markers(x.sel.Root()) {
		rect, measured := view.Surface().NodeRect(m)
		visible := measured && rect.Y+rect.Height >= 0 && rect.Y <= height
		if !visible && !started {
			continue
		}
		r, found := x.ref(m)
		if !found {
			continue
		}
		current = r.Verse
		switch {
		case visible && !started:
			first, started = current, true
		case !visible:
			return first, current - 1, true
		}
	}
	if !started {
		return 0, 0, false
	}
	return first, current, true
}

// InDocumentRange returns the lowest and highest verse numbers in the
// document.
func (x *Index[N]) InDocumentRange() (first, last int, ok bool) {
	refs := x.Refs()
	if len(refs) == 0 {
		return 0, 0, false
	}
	first, last = refs[0].Verse, refs[0].Verse
	for _, r := range refs[1:] {
		first, last = min(first, r.Verse), max(last, r.Verse)
	}
	return first, last, true
}
