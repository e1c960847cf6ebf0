package node

import "unicode/utf16"

// Text offsets are counted in UTF-16 code units so that addresses computed
// over a static tree agree with DOM ranges in a browser.

// TextLength returns the length of s in UTF-16 code units.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Substring returns s between the UTF-16 offsets start and end, clamped to
// the string. A negative end means the end of the string. Offsets given in
// reverse order are swapped, as DOM string offsets are.
func Substring(s string, start, end int) string {
	total := TextLength(s)
	if end < 0 || end > total {
		end = total
	}
	start = min(max(start, 0), total)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return ""
	}
	units := utf16.Encode([]rune(s))
	return string(utf16.Decode(units[start:end]))
}
