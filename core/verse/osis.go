package verse

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/anthonytopper/customer-web-xp/core/errors"
)

// OSISRef is a parsed OSIS reference: "Gen", "Gen.1", "Gen.1.1",
// "Gen.1.1a" or "Matt.5.3-12".
type OSISRef struct {
	Book     string `json:"book"`
	Chapter  int    `json:"chapter,omitempty"`
	Verse    int    `json:"verse,omitempty"`
	VerseEnd int    `json:"verse_end,omitempty"`
	SubVerse string `json:"sub_verse,omitempty"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type osisGrammar struct {
	BookPrefix string       `parser:"@Int?"`
	BookName   string       `parser:"@Ident"`
	Chapter    *osisChapter `parser:"( \".\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type osisChapter struct {
	Number int        `parser:"@Int"`
	Verse  *osisVerse `parser:"( \".\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type osisVerse struct {
	Number   int     `parser:"@Int"`
	SubVerse *string `parser:"@SubVerse?"`
	End      *int    `parser:"( \"-\" @Int )?"`
}

// Book names start with an uppercase letter so that a single lowercase
// letter after a verse number lexes as a sub-verse.
var osisLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Za-z]*`},
	{Name: "SubVerse", Pattern: `[a-z]`},
	{Name: "Punct", Pattern: `[.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var osisParser = participle.MustBuild[osisGrammar](
	participle.Lexer(osisLexer),
	participle.Elide("Whitespace"),
)

// ParseOSIS parses an OSIS reference.
func ParseOSIS(s string) (OSISRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OSISRef{}, errors.NewParse("osis", s, "empty reference")
	}
	parsed, err := osisParser.ParseString("", s)
	if err != nil {
		pe := errors.NewParse("osis", s, "invalid reference")
		pe.Err = err
		return OSISRef{}, pe
	}

	ref := OSISRef{Book: parsed.BookPrefix + parsed.BookName}
	if c := parsed.Chapter; c != nil {
		ref.Chapter = c.Number
		if v := c.Verse; v != nil {
			ref.Verse = v.Number
			if v.SubVerse != nil {
				ref.SubVerse = *v.SubVerse
			}
			if v.End != nil {
				ref.VerseEnd = *v.End
			}
		}
	}
	return ref, nil
}

// String renders r in OSIS form.
func (r OSISRef) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter == 0 {
		return sb.String()
	}
	sb.WriteString("." + strconv.Itoa(r.Chapter))
	if r.Verse == 0 {
		return sb.String()
	}
	sb.WriteString("." + strconv.Itoa(r.Verse) + r.SubVerse)
	if r.VerseEnd > 0 {
		sb.WriteString("-" + strconv.Itoa(r.VerseEnd))
	}
	return sb.String()
}

// IsRange reports whether r spans several verses.
func (r OSISRef) IsRange() bool {
	return r.VerseEnd > r.Verse
}

// Contains reports whether o falls within r. Book and chapter references
// contain everything below them.
func (r OSISRef) Contains(o OSISRef) bool {
	switch {
	case r.Book != o.Book:
		return false
	case r.Chapter == 0:
		return true
	case r.Chapter != o.Chapter:
		return false
	case r.Verse == 0:
		return true
	case r.IsRange():
		return o.Verse >= r.Verse && o.Verse <= r.VerseEnd
	}
	return r.Verse == o.Verse
}

// verseNumber extracts the verse number of a reference attribute. Values the
// OSIS grammar cannot read fall back to the leading digits of the last
// dot-separated segment.
func verseNumber(attr string) (int, OSISRef, bool) {
	if ref, err := ParseOSIS(attr); err == nil && ref.Verse > 0 {
		return ref.Verse, ref, true
	}
	last := attr[strings.LastIndexByte(attr, '.')+1:]
	end := 0
	for end < len(last) && last[end] >= '0' && last[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(last[:end])
	if err != nil {
		return 0, OSISRef{}, false
	}
	return n, OSISRef{}, true
}
