package fsio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/petrd/internal/model"
)

// SidecarExt is the extension of the external payload file written next to a
// container when the payload does not fit inside it.
const SidecarExt = ".bf"

// SidecarPath returns src with its extension replaced by SidecarExt.
func SidecarPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + SidecarExt
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Size returns the length of the file at path by seeking to its end.
// The result is 64-bit so payloads larger than 4 GiB are measured correctly.
func Size(path string) (int64, error) {
	f, err := os.Open(path) //nolint:gosec // path is an input chosen by the operator
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	defer f.Close()

	n, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to seek %s: %w", model.ErrIO, path, err)
	}
	return n, nil
}

// Exists reports whether something exists at path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %w", model.ErrIO, err)
	}
	return nil
}

// Tail reads at most n bytes from the end of the file at path. It returns the
// bytes and the file offset of the first returned byte.
func Tail(path string, n int64) ([]byte, int64, error) {
	f, err := os.Open(path) //nolint:gosec // path is an input chosen by the operator
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to seek %s: %w", model.ErrIO, path, err)
	}
	offset := max(size-n, 0)
	buf := make([]byte, size-offset)
	if _, err := f.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: failed to read %s: %w", model.ErrIO, path, err)
	}
	return buf, offset, nil
}
