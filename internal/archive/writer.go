package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/internal/validation"
)

// Create writes the directory tree srcDir to dstPath as a tar bundle. The
// compression is chosen from the destination suffix. Entries are placed
// under baseDir when it is not empty. The mimetype file, if present, is
// written first.
func Create(srcDir, dstPath, baseDir string) (err error) {
	if !IsBundle(dstPath) {
		return errors.NewUnsupported("archive format", dstPath)
	}
	if baseDir != "" {
		clean, verr := validation.EntryName(baseDir)
		if verr != nil {
			return &errors.ValidationError{Field: "base", Value: baseDir, Message: verr.Error(), Err: verr}
		}
		baseDir = clean
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(dstPath), err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return errors.NewIO("create", dstPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	var compressed io.WriteCloser
	if strings.HasSuffix(dstPath, ".tar.xz") {
		xw, err := xz.NewWriter(out)
		if err != nil {
			return errors.Wrap(err, "xz writer")
		}
		compressed = xw
	} else {
		compressed = gzip.NewWriter(out)
	}

	tw := tar.NewWriter(compressed)
	if err := writeTree(tw, srcDir, baseDir); err != nil {
		return errors.Wrapf(err, "bundle %s", srcDir)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return compressed.Close()
}

func writeTree(tw *tar.Writer, srcDir, baseDir string) error {
	var names []string
	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(srcDir, p)
			if err != nil {
				return err
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, name := range names {
		if name == "mimetype" {
			names[0], names[i] = names[i], names[0]
			break
		}
	}

	now := time.Now()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		entry := name
		if baseDir != "" {
			entry = baseDir + "/" + name
		}
		header := &tar.Header{
			Name:     entry,
			Mode:     0644,
			Size:     int64(len(data)),
			ModTime:  now,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// WriteDir writes every entry of f under dir, creating directories as
// needed.
func (f Files) WriteDir(dir string) error {
	for name, data := range f {
		p, err := validation.SanitizePath(dir, name)
		if err != nil {
			return &errors.ValidationError{Field: "entry", Value: name, Message: err.Error(), Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return errors.NewIO("create directory", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return errors.NewIO("write", p, err)
		}
	}
	return nil
}
