package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	xhtml "golang.org/x/net/html"

	"github.com/anthonytopper/customer-web-xp/core/cfi"
	"github.com/anthonytopper/customer-web-xp/core/epub"
	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/html"
	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/selector"
	"github.com/anthonytopper/customer-web-xp/core/verse"
	"github.com/anthonytopper/customer-web-xp/internal/archive"
)

// ExtractCmd prints the text between two positions of a book.
type ExtractCmd struct {
	Book  string `arg:"" help:"Book: .epub file, unpacked directory, .tar.xz/.tar.gz bundle or single .html page" type:"path"`
	Start string `arg:"" optional:"" help:"Start position"`
	End   string `arg:"" optional:"" help:"End position"`
	Range string `help:"Range identifier, used instead of start and end"`
	Words bool   `help:"Print the word count instead of the text"`
}

func (c *ExtractCmd) Run(ctx *kong.Context) error {
	start, end, err := c.bounds()
	if err != nil {
		return err
	}
	if isPage(c.Book) {
		return c.runPage(ctx, start, end)
	}
	book, err := epub.Open(c.Book)
	if err != nil {
		return err
	}
	defer book.Close()

	if c.Words {
		n, err := book.WordCountInRange(start, end)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.Stdout, n)
		return nil
	}
	text, err := book.ExtractTextRange(start, end)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout, text)
	return nil
}

// isPage reports whether p names a single HTML page rather than a book.
func isPage(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".html" || ext == ".htm"
}

// runPage extracts from one leniently parsed page. Its body is the
// addressed document, so the spine step of start and end is ignored.
func (c *ExtractCmd) runPage(ctx *kong.Context, start, end cfi.CFI) error {
	data, err := os.ReadFile(c.Book)
	if err != nil {
		return errors.NewIO("read", c.Book, err)
	}
	doc, err := html.Parse(data)
	if err != nil {
		return err
	}
	sel := selector.New(doc.Body(), node.Tree[*xhtml.Node](doc.Tree()), nil)
	text := sel.ExtractTextRange(start.SelectorAddress(true), end.SelectorAddress(true))
	if c.Words {
		fmt.Fprintln(ctx.Stdout, len(strings.Fields(text)))
		return nil
	}
	fmt.Fprintln(ctx.Stdout, text)
	return nil
}

func (c *ExtractCmd) bounds() (start, end cfi.CFI, err error) {
	if c.Range != "" {
		r, err := parseCFI("range", c.Range)
		if err != nil {
			return cfi.CFI{}, cfi.CFI{}, err
		}
		if !r.IsRange() {
			return cfi.CFI{}, cfi.CFI{}, errors.NewValidation("range", "not a range identifier")
		}
		return r.RangeStart(), r.RangeEnd(), nil
	}
	if c.Start == "" || c.End == "" {
		return cfi.CFI{}, cfi.CFI{}, errors.NewValidation("start", "start and end positions or --range are required")
	}
	if start, err = parseCFI("start", c.Start); err != nil {
		return cfi.CFI{}, cfi.CFI{}, err
	}
	if end, err = parseCFI("end", c.End); err != nil {
		return cfi.CFI{}, cfi.CFI{}, err
	}
	return start, end, nil
}

// VerseCmd queries the verse markers of one spine item.
type VerseCmd struct {
	Book  string `arg:"" help:"Book: .epub file, unpacked directory or .tar.xz/.tar.gz bundle" type:"path"`
	Item  int    `arg:"" help:"Zero-based spine item"`
	Verse int    `arg:"" optional:"" help:"Verse to extract"`
	To    int    `help:"Last verse of a verse range"`
	At    string `help:"Print the verse containing this position"`
}

type verseSummary struct {
	Refs  []verse.Ref `json:"refs"`
	First int         `json:"first"`
	Last  int         `json:"last"`
}

func (c *VerseCmd) Run(ctx *kong.Context) error {
	book, err := epub.Open(c.Book)
	if err != nil {
		return err
	}
	defer book.Close()

	sel, err := book.BodySelector(c.Item)
	if err != nil {
		return err
	}
	index := verse.New(sel)

	switch {
	case c.At != "":
		at, err := parseCFI("at", c.At)
		if err != nil {
			return err
		}
		ref, ok := index.RefFromAddress(at.SelectorAddress(true))
		if !ok {
			return errors.NewNotFound("verse", c.At)
		}
		return writeJSON(ctx.Stdout, ref)
	case c.To > 0:
		fmt.Fprintln(ctx.Stdout, index.ExtractVerseRange(c.Verse, c.To))
		return nil
	case c.Verse > 0:
		text, ok := index.ExtractVerse(c.Verse)
		if !ok {
			return errors.NewNotFound("verse", fmt.Sprint(c.Verse))
		}
		fmt.Fprintln(ctx.Stdout, text)
		return nil
	}
	first, last, _ := index.InDocumentRange()
	refs := index.Refs()
	if refs == nil {
		refs = []verse.Ref{}
	}
	return writeJSON(ctx.Stdout, verseSummary{Refs: refs, First: first, Last: last})
}

// BuildCmd writes a book from a JSON description.
type BuildCmd struct {
	Input  string `arg:"" help:"JSON file with metadata, css and sections" type:"existingfile"`
	Output string `arg:"" help:"Output .epub file, or a directory for an unpacked book" type:"path"`
}

type bookInput struct {
	Metadata epub.Metadata  `json:"metadata"`
	CSS      string         `json:"css,omitempty"`
	Sections []epub.Section `json:"sections"`
}

func (c *BuildCmd) Run(ctx *kong.Context) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return errors.NewIO("read", c.Input, err)
	}
	var in bookInput
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.NewParse("json", c.Input, err.Error())
	}

	b := epub.NewBuilder()
	mergeMetadata(&b.Metadata, in.Metadata)
	if in.CSS != "" {
		b.SetCSS(in.CSS)
	}
	b.Sections = in.Sections

	if strings.HasSuffix(c.Output, ".epub") {
		out, err := b.Build()
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.Output, out, 0644); err != nil {
			return errors.NewIO("write", c.Output, err)
		}
	} else {
		files, err := b.Files()
		if err != nil {
			return err
		}
		if err := files.WriteDir(c.Output); err != nil {
			return err
		}
	}
	fmt.Fprintf(ctx.Stdout, "Built %s (%d sections)\n", c.Output, len(b.Sections))
	return nil
}

func mergeMetadata(dst *epub.Metadata, src epub.Metadata) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Title, src.Title)
	set(&dst.Author, src.Author)
	set(&dst.Language, src.Language)
	set(&dst.Identifier, src.Identifier)
	set(&dst.Publisher, src.Publisher)
	set(&dst.Description, src.Description)
	set(&dst.Date, src.Date)
}

// BundleCmd packs an unpacked book directory into a tar bundle.
type BundleCmd struct {
	Dir    string `arg:"" help:"Unpacked book directory" type:"existingdir"`
	Output string `arg:"" help:"Output .tar.xz or .tar.gz file" type:"path"`
	Base   string `help:"Directory name to place entries under"`
}

func (c *BundleCmd) Run(ctx *kong.Context) error {
	if err := archive.Create(c.Dir, c.Output, c.Base); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "Created %s\n", c.Output)
	return nil
}
