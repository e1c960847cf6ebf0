package epub

import (
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/cache"
	"github.com/anthonytopper/customer-web-xp/core/cfi"
	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/html"
	"github.com/anthonytopper/customer-web-xp/core/selector"
	"github.com/anthonytopper/customer-web-xp/core/xml"
	"github.com/anthonytopper/customer-web-xp/internal/logging"
	"github.com/anthonytopper/customer-web-xp/internal/validation"
)

// ManifestItem is one entry of the package manifest.
type ManifestItem struct {
	ID         string `json:"id"`
	Href       string `json:"href"`
	MediaType  string `json:"mediaType"`
	Properties string `json:"properties,omitempty"`
}

// Book is an opened publication.
type Book struct {
	Metadata Metadata

	src      source
	closer   io.Closer
	opfPath  string
	manifest map[string]ManifestItem
	spine    []string
	docs     *cache.LRU[int, *xml.Document]
}

// parsedSections bounds how many parsed spine documents a book keeps.
const parsedSections = 8

func newBook(src source, closer io.Closer) *Book {
	return &Book{
		src:    src,
		closer: closer,
		docs:   cache.New(cache.Config[int, *xml.Document]{MaxSize: parsedSections}),
	}
}

// Open reads the publication at p, which may be an unpacked directory, a
// .tar.xz or .tar.gz bundle, or a zip container.
func Open(p string) (*Book, error) {
	src, closer, err := openSource(p)
	if err != nil {
		return nil, err
	}
	b := newBook(src, closer)
	if err := b.load(); err != nil {
		b.Close()
		return nil, errors.Wrapf(err, "opening %s", p)
	}
	logging.BookOpened(p, len(b.spine), "title", b.Metadata.Title)
	return b, nil
}

// Read parses an in-memory zip container.
func Read(data []byte) (*Book, error) {
	src, err := zipSource(data)
	if err != nil {
		return nil, err
	}
	b := newBook(src, nil)
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseStats reports how often spine lookups reused a parsed document.
func (b *Book) ParseStats() cache.Stats {
	return b.docs.Stats()
}

// Close releases the parsed documents and the underlying container, if any.
func (b *Book) Close() error {
	st := b.docs.Stats()
	logging.BookClosed(b.Metadata.Title, st.Hits, st.Misses, st.Evictions)
	b.docs.Clear()
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

func (b *Book) load() error {
	opfPath, err := b.locatePackage()
	if err != nil {
		return err
	}
	data, err := b.src.ReadFile(opfPath)
	if err != nil {
		return err
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return &errors.ParseError{Format: "opf", Path: opfPath, Message: "malformed package document", Err: err}
	}

	b.opfPath = opfPath
	b.Metadata = readMetadata(doc)
	b.manifest = map[string]ManifestItem{}

	items, err := doc.XPath("//*[local-name()='manifest']/*[local-name()='item']")
	if err != nil {
		return err
	}
	for _, it := range items {
		item := ManifestItem{
			ID:         it.SelectAttr("id"),
			Href:       it.SelectAttr("href"),
			MediaType:  it.SelectAttr("media-type"),
			Properties: it.SelectAttr("properties"),
		}
		if item.ID != "" {
			b.manifest[item.ID] = item
		}
	}

	refs, err := doc.XPath("//*[local-name()='spine']/*[local-name()='itemref']")
	if err != nil {
		return err
	}
	for _, ref := range refs {
		b.spine = append(b.spine, ref.SelectAttr("idref"))
	}
	return nil
}

// locatePackage follows META-INF/container.xml to the package document,
// falling back to OEBPS/content.opf when the container is missing.
func (b *Book) locatePackage() (string, error) {
	data, err := b.src.ReadFile(containerPath)
	if err != nil {
		if _, err := b.src.ReadFile(defaultOPF); err != nil {
			return "", errors.NewNotFound("package document", defaultOPF)
		}
		return defaultOPF, nil
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return "", &errors.ParseError{Format: "container", Path: containerPath, Message: "malformed container", Err: err}
	}
	rootfile, err := doc.XPathFirst("//*[local-name()='rootfile']")
	if err != nil {
		return "", err
	}
	if rootfile == nil || rootfile.SelectAttr("full-path") == "" {
		return "", errors.NewNotFound("rootfile", containerPath)
	}
	return rootfile.SelectAttr("full-path"), nil
}

func readMetadata(doc *xml.Document) Metadata {
	field := func(name string) string {
		n, err := doc.XPathFirst("//*[local-name()='metadata']/*[local-name()='" + name + "']")
		if err != nil || n == nil {
			return ""
		}
		return strings.TrimSpace(n.InnerText())
	}
	return Metadata{
		Title:       field("title"),
		Author:      field("creator"),
		Language:    field("language"),
		Identifier:  field("identifier"),
		Publisher:   field("publisher"),
		Description: field("description"),
		Date:        field("date"),
	}
}

// Spine returns the manifest items in reading order. Itemrefs naming an
// unknown id are skipped.
func (b *Book) Spine() []ManifestItem {
	out := make([]ManifestItem, 0, len(b.spine))
	for _, id := range b.spine {
		if item, ok := b.manifest[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of spine entries.
func (b *Book) Len() int { return len(b.spine) }

// SpineHref returns the href of spine item i relative to the package
// document.
func (b *Book) SpineHref(i int) (string, bool) {
	if i < 0 || i >= len(b.spine) {
		return "", false
	}
	item, ok := b.manifest[b.spine[i]]
	if !ok || item.Href == "" {
		return "", false
	}
	return item.Href, true
}

// spinePath resolves spine item i to a path relative to the book root.
func (b *Book) spinePath(i int) (string, error) {
	href, ok := b.SpineHref(i)
	if !ok {
		return "", errors.NewNotFound("spine item", strconv.Itoa(i))
	}
	href, _, _ = strings.Cut(href, "#")
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	p, err := validation.EntryName(path.Join(path.Dir(b.opfPath), href))
	if err != nil {
		return "", &errors.ValidationError{Field: "href", Value: href, Message: err.Error(), Err: err}
	}
	return p, nil
}

// SpineFile returns the raw bytes of spine item i.
func (b *Book) SpineFile(i int) ([]byte, error) {
	p, err := b.spinePath(i)
	if err != nil {
		return nil, err
	}
	return b.src.ReadFile(p)
}

// SpineDocument returns the parsed spine item i. Recently used documents
// are shared between calls.
func (b *Book) SpineDocument(i int) (*xml.Document, error) {
	return b.docs.GetOrLoad(i, func() (*xml.Document, error) { return b.parseSpine(i) })
}

func (b *Book) parseSpine(i int) (*xml.Document, error) {
	data, err := b.SpineFile(i)
	if err != nil {
		return nil, err
	}
	doc, err := xml.Parse(data)
	if err == nil {
		return doc, nil
	}
	// Tag soup is repaired the way a browser would and parsed again.
	p, _ := b.spinePath(i)
	if loose, lerr := html.Parse(data); lerr == nil {
		if doc, rerr := xml.Parse(loose.XHTML()); rerr == nil {
			logging.SectionRepaired(p, err)
			return doc, nil
		}
	}
	return nil, &errors.ParseError{Format: "xhtml", Path: p, Message: "malformed section", Err: err}
}

// BodySelector returns a selector rooted at the body element of spine item
// i, the root that CFI paths address with the body step omitted.
func (b *Book) BodySelector(i int) (*selector.Selector[*xmlquery.Node], error) {
	doc, err := b.SpineDocument(i)
	if err != nil {
		return nil, err
	}
	body := bodyOf(doc)
	if body == nil {
		return nil, errors.NewNotFound("body", strconv.Itoa(i))
	}
	return selector.New(body, doc.Tree(), nil), nil
}

// bodyOf prefers a body that is a direct child of the document element.
func bodyOf(doc *xml.Document) *xmlquery.Node {
	if root := doc.Root(); root != nil {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode && c.Data == "body" {
				return c
			}
		}
	}
	return doc.Body()
}

// ExtractTextRange returns the text from start to end, which may lie in
// different spine items. The first and last sections are cut at the CFI
// positions, sections in between contribute all their text, and every
// section is followed by a newline.
func (b *Book) ExtractTextRange(start, end cfi.CFI) (string, error) {
	if err := start.Err(); err != nil {
		return "", err
	}
	if err := end.Err(); err != nil {
		return "", err
	}
	first, last := start.SpineItem(), end.SpineItem()
	if last < first {
		return "", errors.NewValidation("end", "end spine item precedes start")
	}

	var sb strings.Builder
	for i := first; i <= last; i++ {
		sel, err := b.BodySelector(i)
		if err != nil {
			return "", err
		}
		var from, to address.Full
		if i == first {
			from = start.SelectorAddress(true)
		}
		if i == last {
			to = end.SelectorAddress(true)
		}
		sb.WriteString(sel.ExtractTextRange(from, to))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// ExtractRange is ExtractTextRange over the two ends of a range CFI.
func (b *Book) ExtractRange(c cfi.CFI) (string, error) {
	if err := c.Err(); err != nil {
		return "", err
	}
	if !c.IsRange() {
		return "", errors.NewValidation("cfi", "not a range")
	}
	return b.ExtractTextRange(c.RangeStart(), c.RangeEnd())
}

// WordCountInRange counts whitespace-separated words between start and end.
func (b *Book) WordCountInRange(start, end cfi.CFI) (int, error) {
	text, err := b.ExtractTextRange(start, end)
	if err != nil {
		return 0, err
	}
	return len(strings.Fields(text)), nil
}
