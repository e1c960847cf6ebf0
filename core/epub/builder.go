// Package epub builds and reads EPUB publications. The reader resolves
// spine-relative CFIs against the parsed section documents; the builder
// produces small books for bundles and fixtures.
package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anthonytopper/customer-web-xp/core/xml"
	"github.com/anthonytopper/customer-web-xp/internal/archive"
)

const (
	mimetype      = "application/epub+zip"
	containerPath = "META-INF/container.xml"
	defaultOPF    = "OEBPS/content.opf"
)

// Metadata is the Dublin Core subset written to and read from the package
// document.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	Identifier  string `json:"identifier,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Section is one spine document. Content is an XHTML fragment placed
// directly inside body; Title, when set, becomes a leading h1.
type Section struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Builder assembles an EPUB 3 publication.
type Builder struct {
	Metadata Metadata
	Sections []Section
	css      string
}

// NewBuilder returns a builder with a random urn:uuid identifier.
func NewBuilder() *Builder {
	return &Builder{
		Metadata: Metadata{
			Language:   "en",
			Identifier: "urn:uuid:" + uuid.NewString(),
			Date:       time.Now().Format("2006-01-02"),
		},
	}
}

// SetCSS replaces the default stylesheet.
func (b *Builder) SetCSS(css string) {
	b.css = css
}

// AddSection appends a spine document.
func (b *Builder) AddSection(title, content string) {
	b.Sections = append(b.Sections, Section{Title: title, Content: content})
}

// Files renders the publication as archive entries keyed by path.
func (b *Builder) Files() (archive.Files, error) {
	if len(b.Sections) == 0 {
		return nil, fmt.Errorf("EPUB must have at least one section")
	}
	files := archive.Files{
		"mimetype":        []byte(mimetype),
		containerPath:     []byte(containerXML),
		defaultOPF:        []byte(b.contentOPF()),
		"OEBPS/toc.xhtml": []byte(b.navXHTML()),
		"OEBPS/style.css": []byte(b.stylesheet()),
	}
	for i, s := range b.Sections {
		files[fmt.Sprintf("OEBPS/%s", sectionHref(i))] = []byte(sectionXHTML(s))
	}
	return files, nil
}

// Build returns the publication as a zip container with the mimetype entry
// stored first and uncompressed.
func (b *Builder) Build() ([]byte, error) {
	files, err := b.Files()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(files["mimetype"]); err != nil {
		return nil, err
	}

	names := files.Names()
	sort.Strings(names)
	for _, name := range names {
		if name == "mimetype" {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func sectionHref(i int) string {
	return fmt.Sprintf("text/section%d.xhtml", i+1)
}

func (b *Builder) contentOPF() string {
	var manifest, spine strings.Builder
	manifest.WriteString(`    <item id="nav" href="toc.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	manifest.WriteString(`    <item id="style" href="style.css" media-type="text/css"/>` + "\n")
	for i := range b.Sections {
		id := fmt.Sprintf("section%d", i+1)
		fmt.Fprintf(&manifest, `    <item id="%s" href="%s" media-type="application/xhtml+xml"/>`+"\n", id, sectionHref(i))
		fmt.Fprintf(&spine, `    <itemref idref="%s"/>`+"\n", id)
	}

	m := b.Metadata
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="BookId">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="BookId">%s</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:creator>%s</dc:creator>
    <dc:language>%s</dc:language>
    <dc:date>%s</dc:date>
    <dc:publisher>%s</dc:publisher>
    <dc:description>%s</dc:description>
    <meta property="dcterms:modified">%s</meta>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`,
		xml.EscapeText(m.Identifier),
		xml.EscapeText(m.Title),
		xml.EscapeText(m.Author),
		xml.EscapeText(m.Language),
		xml.EscapeText(m.Date),
		xml.EscapeText(m.Publisher),
		xml.EscapeText(m.Description),
		time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		manifest.String(),
		spine.String(),
	)
}

func (b *Builder) navXHTML() string {
	var items strings.Builder
	for i, s := range b.Sections {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}
		fmt.Fprintf(&items, `      <li><a href="%s">%s</a></li>`+"\n", sectionHref(i), xml.EscapeText(title))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <ol>
%s    </ol>
  </nav>
</body>
</html>`, items.String())
}

func (b *Builder) stylesheet() string {
	if b.css != "" {
		return b.css
	}
	return `body {
  font-family: serif;
  margin: 1em;
  line-height: 1.6;
}
p {
  margin: 0.5em 0;
}
`
}

// sectionXHTML writes body content with no surrounding whitespace so the
// first content element is the first child of body.
func sectionXHTML(s Section) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="../style.css"/>
</head>
<body>`, xml.EscapeText(s.Title))
	if s.Title != "" {
		fmt.Fprintf(&sb, "<h1>%s</h1>", xml.EscapeText(s.Title))
	}
	sb.WriteString(s.Content)
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}
