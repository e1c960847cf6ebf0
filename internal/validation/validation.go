// Package validation checks names and sizes taken from book containers
// before they reach the filesystem: tar and zip entry names, manifest hrefs
// and output paths.
package validation

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits on container content.
const (
	// MaxEntrySize is the largest single container entry read (256 MB).
	MaxEntrySize = 256 << 20
	// MaxPathLength is the maximum allowed entry or path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrTooLarge         = errors.New("entry too large")
)

// EntryName cleans a slash-separated container entry name. It rejects
// absolute names and names that climb out of the container root.
func EntryName(name string) (string, error) {
	if err := ValidatePath(name); err != nil {
		return "", err
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q is not a relative entry name", ErrPathTraversal, name)
	}
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "." {
		return "", ErrEmptyPath
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return clean, nil
}

// SanitizePath resolves an entry name under baseDir and returns the full
// filesystem path. It fails when the result would lie outside baseDir.
func SanitizePath(baseDir, name string) (string, error) {
	clean, err := EntryName(name)
	if err != nil {
		return "", err
	}
	full := filepath.Join(baseDir, filepath.FromSlash(clean))

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return full, nil
}

// ValidatePath checks length and rejects NUL and control characters.
func ValidatePath(p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if len(p) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range p {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ReadLimited reads r fully, failing with ErrTooLarge past limit bytes.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
