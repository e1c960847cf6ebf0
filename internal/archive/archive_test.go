package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/internal/validation"
)

func writeBook(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": "<container/>",
		"OEBPS/content.opf":      "<package/>",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestCreateAndReadAll(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		baseDir string
	}{
		{"xz with base dir", "book.tar.xz", "genesis"},
		{"xz flat", "flat.tar.xz", ""},
		{"gzip with base dir", "book.tar.gz", "genesis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			writeBook(t, src)
			dst := filepath.Join(t.TempDir(), tt.file)

			if err := Create(src, dst, tt.baseDir); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			files, err := ReadAll(dst)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			names := files.Names()
			sort.Strings(names)
			want := []string{"META-INF/container.xml", "OEBPS/content.opf", "mimetype"}
			if len(names) != len(want) {
				t.Fatalf("Names() = %v, want %v", names, want)
			}
			for i := range want {
				if names[i] != want[i] {
					t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
				}
			}

			data, err := files.ReadFile("OEBPS/content.opf")
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(data) != "<package/>" {
				t.Errorf("ReadFile() = %q, want %q", data, "<package/>")
			}
		})
	}
}

func TestMimetypeFirst(t *testing.T) {
	src := t.TempDir()
	writeBook(t, src)
	dst := filepath.Join(t.TempDir(), "book.tar.gz")
	if err := Create(src, dst, "book"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	r, err := NewReader(dst)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	var first string
	err = r.Iterate(func(header *tar.Header, _ io.Reader) (bool, error) {
		first = header.Name
		return true, nil
	})
	if err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if first != "book/mimetype" {
		t.Errorf("first entry = %q, want %q", first, "book/mimetype")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := NewReader("book.zip"); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("NewReader(zip) error = %v, want ErrUnsupported", err)
	}
	if err := Create(t.TempDir(), filepath.Join(t.TempDir(), "out.rar"), ""); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Create(rar) error = %v, want ErrUnsupported", err)
	}
}

func TestMissingEntry(t *testing.T) {
	files := Files{"mimetype": []byte("x")}
	if _, err := files.ReadFile("OEBPS/content.opf"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ReadFile() error = %v, want ErrNotFound", err)
	}
	if _, err := files.ReadFile("/mimetype"); err != nil {
		t.Errorf("ReadFile(/mimetype) error = %v", err)
	}
}

func TestCorruptedBundle(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.tar.xz", "bad.tar.gz"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("not compressed"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadAll(p); err == nil {
			t.Errorf("ReadAll(%s) succeeded, want error", name)
		}
	}
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	files := Files{
		"mimetype":           []byte("application/epub+zip"),
		"OEBPS/text/a.xhtml": []byte("<html/>"),
	}
	if err := files.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "OEBPS", "text", "a.xhtml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "<html/>" {
		t.Errorf("a.xhtml = %q, want %q", data, "<html/>")
	}
}

func TestTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "evil.tar.gz")
	out, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)
	body := []byte("pwned")
	if err := tw.WriteHeader(&tar.Header{Name: "../evil.txt", Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	tw.Write(body)
	tw.Close()
	gw.Close()
	out.Close()

	if _, err := ReadAll(p); !errors.Is(err, validation.ErrPathTraversal) {
		t.Errorf("ReadAll(traversal) error = %v, want ErrPathTraversal", err)
	}
	if err := (Files{"../evil.txt": body}).WriteDir(filepath.Join(dir, "out")); err == nil {
		t.Error("WriteDir(traversal) succeeded")
	}
	if err := Create(dir, filepath.Join(t.TempDir(), "b.tar.gz"), "../up"); err == nil {
		t.Error("Create() with an escaping base succeeded")
	}
}
