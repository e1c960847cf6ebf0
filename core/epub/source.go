package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/internal/archive"
)

// source yields the files of a publication by slash-separated path relative
// to the book root.
type source interface {
	ReadFile(name string) ([]byte, error)
}

// fsSource serves an unpacked directory or an open zip container.
type fsSource struct {
	fsys fs.FS
}

func (s fsSource) ReadFile(name string) ([]byte, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFound("book entry", name)
		}
		return nil, errors.NewIO("read", name, err)
	}
	return data, nil
}

// openSource picks a source for p: a directory, a tar bundle, or a zip
// container. The returned closer is nil when nothing stays open.
func openSource(p string) (source, io.Closer, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewNotFound("book", p)
		}
		return nil, nil, errors.NewIO("stat", p, err)
	}
	switch {
	case info.IsDir():
		return fsSource{fsys: os.DirFS(p)}, nil, nil
	case archive.IsBundle(p):
		files, err := archive.ReadAll(p)
		if err != nil {
			return nil, nil, err
		}
		return files, nil, nil
	default:
		zr, err := zip.OpenReader(p)
		if err != nil {
			return nil, nil, errors.NewIO("open zip", p, err)
		}
		return fsSource{fsys: zr}, zr, nil
	}
}

func zipSource(data []byte) (source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewIO("open zip", "<memory>", err)
	}
	return fsSource{fsys: zr}, nil
}
