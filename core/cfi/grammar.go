package cfi

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/errors"
)

// mainGrammar is the participle grammar for the single-position form.
// Example: "epubcfi(/6/8[chap]!/4/2[p1]/1:5)"
//
//nolint:govet // participle grammar tags are not standard struct tags
type mainGrammar struct {
	OPF     int         `parser:"\"epubcfi\" \"(\" \"/\" @Int"`
	Spine   int         `parser:"\"/\" @Int"`
	Package []*stepPart `parser:"@@*"`
	Content []*stepPart `parser:"\"!\" @@* \")\""`
}

// pathGrammar parses the start and end diffs of the range form.
// Example: "/2/1:100"
//
//nolint:govet // participle grammar tags are not standard struct tags
type pathGrammar struct {
	Steps []*stepPart `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type stepPart struct {
	Step   int  `parser:"\"/\" @Int"`
	Offset *int `parser:"( \":\" @Int )?"`
}

// cfiLexer defines the tokens of the fragment grammar. Bracketed labels are
// recognised as tokens and elided so they never reach the parser.
var cfiLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Label", Pattern: `\[[^\]]*\]`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-z]+`},
	{Name: "Punct", Pattern: `[()/!:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var mainParser = participle.MustBuild[mainGrammar](
	participle.Lexer(cfiLexer),
	participle.Elide("Label", "Whitespace"),
)

var pathParser = participle.MustBuild[pathGrammar](
	participle.Lexer(cfiLexer),
	participle.Elide("Label", "Whitespace"),
)

func parseError(raw, format string, args ...any) error {
	return errors.NewParse("epubcfi", raw, fmt.Sprintf(format, args...))
}

// toFull converts parsed steps to an address. When several steps carry an
// offset the last one wins.
func toFull(raw string, steps []*stepPart) (address.Full, error) {
	f := address.Full{Steps: address.Steps{}}
	for _, s := range steps {
		if s.Step < 0 {
			return address.Full{}, parseError(raw, "negative step %d", s.Step)
		}
		f.Steps = append(f.Steps, s.Step)
		if s.Offset != nil {
			if *s.Offset < 0 {
				return address.Full{}, parseError(raw, "negative offset %d", *s.Offset)
			}
			f.Offset, f.HasOffset = *s.Offset, true
		}
	}
	return f, nil
}

// bareSlash drops a lone trailing "/" that some writers emit for an empty
// path, e.g. "epubcfi(/6/8!/)".
func bareSlash(s string) string {
	return strings.Replace(s, "!/)", "!)", 1)
}

func parsePath(raw, path string) (address.Full, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return address.Full{Steps: address.Steps{}}, nil
	}
	parsed, err := pathParser.ParseString("", path)
	if err != nil {
		return address.Full{}, parseError(raw, "invalid path %q: %v", path, err)
	}
	return toFull(raw, parsed.Steps)
}

// parse fills c from its raw text.
func (c *CFI) parse() {
	parts := strings.Split(c.raw, ",")
	var main string
	switch len(parts) {
	case 1:
		main = parts[0]
	case 3:
		c.isRange = true
		main = parts[0] + ")"
		if !strings.HasSuffix(parts[2], ")") {
			c.fail(parseError(c.raw, "range end %q is not closed", parts[2]))
			return
		}
	default:
		c.fail(parseError(c.raw, "expected 1 or 3 segments, got %d", len(parts)))
		return
	}

	parsed, err := mainParser.ParseString("", bareSlash(main))
	if err != nil {
		c.fail(parseError(c.raw, "could not parse the main part %q: %v", main, err))
		return
	}
	if parsed.OPF < 0 {
		c.fail(parseError(c.raw, "negative package index %d", parsed.OPF))
		return
	}
	base, err := toFull(c.raw, parsed.Content)
	if err != nil {
		c.fail(err)
		return
	}
	c.opf, c.spine, c.base = parsed.OPF, parsed.Spine, base

	if c.isRange {
		if c.start, err = parsePath(c.raw, parts[1]); err != nil {
			c.fail(err)
			return
		}
		if c.end, err = parsePath(c.raw, strings.TrimSuffix(parts[2], ")")); err != nil {
			c.fail(err)
			return
		}
	}
}

// fail marks c invalid and resets every structural field.
func (c *CFI) fail(err error) {
	raw := c.raw
	*c = CFI{raw: raw, err: err}
}
