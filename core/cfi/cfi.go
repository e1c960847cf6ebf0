// Package cfi implements EPUB canonical fragment identifiers: parsing,
// serialization, ordering, range predicates and pure step transformations.
//
// A single position reads epubcfi(/6/8!/4/2/1:5): package slot 6, spine
// step 8, then the content path inside that spine item. A range reads
// epubcfi(/6/8!/4,/2/1:100,/3/1:50): the common path followed by the start
// and end diffs. Bracketed labels are accepted and dropped.
package cfi

import (
	"fmt"
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/address"
)

// DefaultOPF is the package-document slot used when none is given.
const DefaultOPF = 6

// CFI is an immutable parsed fragment identifier. The zero value is invalid.
type CFI struct {
	raw     string
	err     error
	isRange bool
	opf     int
	spine   int
	base    address.Full
	start   address.Full // range start diff
	end     address.Full // range end diff
}

// Parse parses s. It never fails outright: a string that does not match the
// grammar yields an invalid CFI whose Err explains why.
func Parse(s string) CFI {
	c := CFI{raw: s}
	c.parse()
	return c
}

// Valid reports whether the identifier parsed.
func (c CFI) Valid() bool { return c.err == nil && c.raw != "" }

// Err returns the parse error of an invalid identifier.
func (c CFI) Err() error {
	if c.raw == "" && c.err == nil {
		return parseError("", "empty identifier")
	}
	return c.err
}

// String returns the text the identifier was parsed from.
func (c CFI) String() string { return c.raw }

func (c CFI) IsRange() bool { return c.isRange }
func (c CFI) OPF() int      { return c.opf }
func (c CFI) Spine() int    { return c.spine }

// SpineItem returns the zero-based spine position addressed by the spine
// step.
func (c CFI) SpineItem() int { return c.spine/2 - 1 }

// Base returns the single-position path, or the common path of a range.
func (c CFI) Base() address.Full { return clone(c.base) }

// StartDiff and EndDiff return the range diffs relative to Base.
func (c CFI) StartDiff() address.Full { return clone(c.start) }
func (c CFI) EndDiff() address.Full   { return clone(c.end) }

// Start returns the first position covered: Base for a single position,
// Base followed by the start diff for a range.
func (c CFI) Start() address.Full {
	if !c.isRange {
		return clone(c.base)
	}
	return join(c.base, c.start)
}

// End returns the last position covered.
func (c CFI) End() address.Full {
	if !c.isRange {
		return clone(c.base)
	}
	return join(c.base, c.end)
}

func clone(f address.Full) address.Full {
	f.Steps = f.Steps.Clone()
	return f
}

func join(base, diff address.Full) address.Full {
	return address.Full{Steps: base.Steps.Concat(diff.Steps), Offset: diff.Offset, HasOffset: diff.HasOffset}
}

// Pure returns the identifier without the epubcfi( ) wrapper.
func (c CFI) Pure() string {
	if strings.HasPrefix(c.raw, "epubcfi(") && strings.HasSuffix(c.raw, ")") {
		return c.raw[len("epubcfi(") : len(c.raw)-1]
	}
	return c.raw
}

// WithoutIDs returns the identifier with every bracketed label removed.
func (c CFI) WithoutIDs() CFI {
	var sb strings.Builder
	depth := 0
	for _, r := range c.raw {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return Parse(sb.String())
}

// RangeStart returns the single position at the start of a range, or c
// itself when c is not a range.
func (c CFI) RangeStart() CFI {
	if !c.isRange || !c.Valid() {
		return c
	}
	return construct(c.opf, c.spine, c.Start())
}

// RangeEnd returns the single position at the end of a range.
func (c CFI) RangeEnd() CFI {
	if !c.isRange || !c.Valid() {
		return c
	}
	return construct(c.opf, c.spine, c.End())
}

// construct builds a valid single-position identifier from fields.
func construct(opf, spine int, base address.Full) CFI {
	c := CFI{opf: opf, spine: spine, base: clone(base)}
	if c.base.Steps == nil {
		c.base.Steps = address.Steps{}
	}
	c.raw = c.serialize()
	return c
}

func constructRange(opf, spine int, base, start, end address.Full) CFI {
	c := CFI{isRange: true, opf: opf, spine: spine, base: clone(base), start: clone(start), end: clone(end)}
	c.raw = c.serialize()
	return c
}

// serialize renders the structured fields without labels.
func (c CFI) serialize() string {
	head := fmt.Sprintf("epubcfi(/%d/%d!", c.opf, c.spine)
	if !c.isRange {
		return head + c.base.String() + ")"
	}
	return head + c.base.Steps.String() + "," + c.start.String() + "," + c.end.String() + ")"
}

// MarshalText encodes the identifier as its string form.
func (c CFI) MarshalText() ([]byte, error) {
	return []byte(c.raw), nil
}

// UnmarshalText parses text. Invalid identifiers are reported as errors.
func (c *CFI) UnmarshalText(text []byte) error {
	*c = Parse(string(text))
	return c.err
}
