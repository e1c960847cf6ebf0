// Package archive reads and writes compressed tar bundles of unpacked EPUB
// books. Both .tar.xz and .tar.gz are supported.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/internal/validation"
)

// IsBundle reports whether path names a supported tar bundle.
func IsBundle(p string) bool {
	return strings.HasSuffix(p, ".tar.xz") || strings.HasSuffix(p, ".tar.gz") || strings.HasSuffix(p, ".tgz")
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader creates a new archive reader for the given path.
// It automatically detects and handles .tar.gz and .tar.xz compression.
func NewReader(p string) (*Reader, error) {
	if !IsBundle(p) {
		return nil, errors.NewUnsupported("archive format", p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.NewIO("open", p, err)
	}

	var reader io.Reader
	var decompressor io.Closer
	if strings.HasSuffix(p, ".tar.xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	} else {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader, decompressor = gzr, gzr
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in the archive, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Files holds the regular files of a bundle keyed by slash-separated path
// relative to the book root.
type Files map[string][]byte

// ReadFile returns the named entry.
func (f Files) ReadFile(name string) ([]byte, error) {
	data, ok := f[path.Clean(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil, errors.NewNotFound("bundle entry", name)
	}
	return data, nil
}

// Names returns the entry names in no particular order.
func (f Files) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names
}

// ReadAll loads every regular file of the bundle at p. When all entries sit
// under a single top-level directory that directory is stripped, so a bundle
// of "book/mimetype" and one of "mimetype" read the same.
func ReadAll(p string) (Files, error) {
	r, err := NewReader(p)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raw := Files{}
	err = r.Iterate(func(header *tar.Header, content io.Reader) (bool, error) {
		if header.Typeflag != tar.TypeReg {
			return false, nil
		}
		name, err := validation.EntryName(header.Name)
		if err != nil {
			return true, &errors.ValidationError{Field: "entry", Value: header.Name, Message: err.Error(), Err: err}
		}
		data, err := validation.ReadLimited(content, validation.MaxEntrySize)
		if err != nil {
			return true, errors.NewIO("read", header.Name, err)
		}
		raw[name] = data
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return stripCommonDir(raw), nil
}

func stripCommonDir(files Files) Files {
	prefix := ""
	for name := range files {
		dir, _, ok := strings.Cut(name, "/")
		if !ok {
			return files
		}
		if prefix == "" {
			prefix = dir
		} else if prefix != dir {
			return files
		}
	}
	if prefix == "" {
		return files
	}
	out := make(Files, len(files))
	for name, data := range files {
		out[strings.TrimPrefix(name, prefix+"/")] = data
	}
	return out
}
