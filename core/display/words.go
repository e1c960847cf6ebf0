package display

import (
	"iter"
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/geometry"
	"github.com/anthonytopper/customer-web-xp/core/node"
)

// Span is a half-open range of UTF-16 offsets into a text node.
type Span struct {
	Start, End int
}

// Words yields the spans of text separated by single spaces. Consecutive
// spaces produce empty spans. The sequence can be ranged over repeatedly.
func Words(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		start := 0
		for _, word := range strings.Split(text, " ") {
			end := start + node.TextLength(word)
			if !yield(Span{start, end}) {
				return
			}
			start = end + 1
		}
	}
}

// LineHeightHook returns a RectHook that replaces a rectangle's height with
// the current line height reported by lineHeight, queried on every call.
// Zero-sized rectangles pass through untouched, and until a line height has
// been seen so does everything else.
func LineHeightHook(lineHeight func() (float64, bool)) RectHook {
	var last float64
	known := false
	return func(r geometry.Rect) geometry.Rect {
		if r.Width == 0 && r.Height == 0 {
			return r
		}
		if h, ok := lineHeight(); ok && h > 0 {
			last, known = h, true
		}
		if !known {
			return r
		}
		r.Height = last
		return r
	}
}
