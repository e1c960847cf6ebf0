// Package address holds the structural address types shared by the
// selector, the fragment-identifier model and the highlight layer.
//
// A node address is the list of steps from a root to a node. Even steps
// select element children ((index+1)*2), odd steps select text children
// (index*2+1), counted among siblings that pass the traversal filter.
package address

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/errors"
)

// Steps is a node address.
type Steps []int

// ElementStep returns the step for the index-th element child.
func ElementStep(index int) int { return (index + 1) * 2 }

// TextStep returns the step for the index-th text child.
func TextStep(index int) int { return index*2 + 1 }

// IsElementStep reports whether step selects an element child.
func IsElementStep(step int) bool { return step%2 == 0 }

// StepIndex returns the child index a step selects within its category.
func StepIndex(step int) int {
	if IsElementStep(step) {
		return step/2 - 1
	}
	return (step - 1) / 2
}

// Equal reports whether s and o hold the same steps.
func (s Steps) Equal(o Steps) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of s that does not share storage.
func (s Steps) Clone() Steps {
	if s == nil {
		return nil
	}
	return append(Steps(nil), s...)
}

// Concat returns s followed by o in fresh storage.
func (s Steps) Concat(o Steps) Steps {
	out := make(Steps, 0, len(s)+len(o))
	out = append(out, s...)
	return append(out, o...)
}

// HasPrefix reports whether p is a prefix of s.
func (s Steps) HasPrefix(p Steps) bool {
	return len(p) <= len(s) && s[:len(p)].Equal(p)
}

// Compare orders step arrays elementwise; a strict prefix is less.
func (s Steps) Compare(o Steps) int {
	for i := 0; i < len(s) && i < len(o); i++ {
		if s[i] != o[i] {
			if s[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(s) < len(o):
		return -1
	case len(s) > len(o):
		return 1
	}
	return 0
}

// String renders s as a path, e.g. "/4/2/1".
func (s Steps) String() string {
	var sb strings.Builder
	for _, step := range s {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(step))
	}
	return sb.String()
}

// CommonPrefix returns the longest shared leading run of steps.
func CommonPrefix(a, b Steps) Steps {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n].Clone()
}

// Full is a node address optionally terminated by a character offset into
// the text node it resolves to.
type Full struct {
	Steps     Steps
	Offset    int
	HasOffset bool
}

// Of returns a Full address without an offset.
func Of(steps ...int) Full {
	return Full{Steps: Steps(steps).Clone()}
}

// At returns a Full address with the given offset.
func At(steps Steps, offset int) Full {
	return Full{Steps: steps.Clone(), Offset: offset, HasOffset: true}
}

// WithOffset returns a copy of f terminated by offset.
func (f Full) WithOffset(offset int) Full {
	return At(f.Steps, offset)
}

// WithoutOffset returns the node address of f as a Full address.
func (f Full) WithoutOffset() Full {
	return Full{Steps: f.Steps.Clone()}
}

// IsEmpty reports whether f addresses the root without an offset.
func (f Full) IsEmpty() bool {
	return len(f.Steps) == 0 && !f.HasOffset
}

// IsValid reports whether every step is positive and text steps appear only
// in the terminal position, which is the only place an offset is meaningful.
func (f Full) IsValid() bool {
	for i, step := range f.Steps {
		if step <= 0 {
			return false
		}
		if !IsElementStep(step) && i != len(f.Steps)-1 {
			return false
		}
	}
	return f.Offset >= 0
}

// Equal reports whether f and o are the same address, offset included.
func (f Full) Equal(o Full) bool {
	if !f.Steps.Equal(o.Steps) || f.HasOffset != o.HasOffset {
		return false
	}
	return !f.HasOffset || f.Offset == o.Offset
}

// Compare orders positions by steps, then by offset, with a missing offset
// sorting before any present one.
func (f Full) Compare(o Full) int {
	if c := f.Steps.Compare(o.Steps); c != 0 {
		return c
	}
	switch {
	case !f.HasOffset && !o.HasOffset:
		return 0
	case !f.HasOffset:
		return -1
	case !o.HasOffset:
		return 1
	case f.Offset < o.Offset:
		return -1
	case f.Offset > o.Offset:
		return 1
	}
	return 0
}

// Relative strips n leading steps from f.
func (f Full) Relative(n int) Full {
	if n > len(f.Steps) {
		n = len(f.Steps)
	}
	out := f
	out.Steps = f.Steps[n:].Clone()
	return out
}

// String renders f as "/4/2/1:5".
func (f Full) String() string {
	s := f.Steps.String()
	if f.HasOffset {
		s += ":" + strconv.Itoa(f.Offset)
	}
	return s
}

// Parse reads the path form produced by String. Labels in square brackets
// are ignored. An empty string or "/" is the root address.
func Parse(s string) (Full, error) {
	var f Full
	s = stripLabels(strings.TrimSpace(s))
	if s == "" || s == "/" {
		return f, nil
	}
	if !strings.HasPrefix(s, "/") {
		return f, errors.NewParse("address", "", fmt.Sprintf("path %q must start with '/'", s))
	}
	for i, seg := range strings.Split(s[1:], "/") {
		stepText, offText, hasOff := strings.Cut(seg, ":")
		step, err := strconv.Atoi(stepText)
		if err != nil || step < 0 {
			return Full{}, errors.NewParse("address", "", fmt.Sprintf("invalid step %q at position %d", seg, i))
		}
		f.Steps = append(f.Steps, step)
		if hasOff {
			off, err := strconv.Atoi(offText)
			if err != nil || off < 0 {
				return Full{}, errors.NewParse("address", "", fmt.Sprintf("invalid offset %q", offText))
			}
			f.Offset, f.HasOffset = off, true
		}
	}
	return f, nil
}

func stripLabels(s string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// MarshalJSON encodes f as an integer array with an optional final ":N".
func (f Full) MarshalJSON() ([]byte, error) {
	parts := make([]any, 0, len(f.Steps)+1)
	for _, s := range f.Steps {
		parts = append(parts, s)
	}
	if f.HasOffset {
		parts = append(parts, ":"+strconv.Itoa(f.Offset))
	}
	return json.Marshal(parts)
}

// UnmarshalJSON accepts the array form written by MarshalJSON.
func (f *Full) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.NewParse("address", "", err.Error())
	}
	out := Full{Steps: Steps{}}
	for i, raw := range parts {
		var step int
		if err := json.Unmarshal(raw, &step); err == nil {
			if out.HasOffset {
				return errors.NewParse("address", "", "offset must be the last element")
			}
			out.Steps = append(out.Steps, step)
			continue
		}
		var marker string
		if err := json.Unmarshal(raw, &marker); err != nil || !strings.HasPrefix(marker, ":") || i != len(parts)-1 {
			return errors.NewParse("address", "", fmt.Sprintf("invalid element %s", raw))
		}
		off, err := strconv.Atoi(marker[1:])
		if err != nil {
			return errors.NewParse("address", "", fmt.Sprintf("invalid offset %q", marker))
		}
		out.Offset, out.HasOffset = off, true
	}
	*f = out
	return nil
}
