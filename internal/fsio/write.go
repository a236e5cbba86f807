package fsio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/petrd/internal/model"
)

const (
	writeBufferSize = 1 << 20
	filePerm        = 0o644
)

type writeOptions struct {
	tee      io.Writer
	expected int64
}

// WriteOption configures WriteNew and CopyNew.
type WriteOption func(*writeOptions)

// WithTee copies every byte written to w as well, e.g. a hash.
func WithTee(w io.Writer) WriteOption {
	return func(o *writeOptions) {
		o.tee = w
	}
}

// WithExpectedSize makes the write fail with model.ErrSizeMismatch, leaving
// no destination behind, unless exactly n bytes were copied.
func WithExpectedSize(n int64) WriteOption {
	return func(o *writeOptions) {
		o.expected = n
	}
}

// WriteNew copies r into a new file at dst. It fails with
// model.ErrAlreadyExists when dst exists, before or during the write.
func WriteNew(ctx context.Context, dst string, r io.Reader, opts ...WriteOption) (int64, error) {
	o := writeOptions{expected: -1}
	for _, opt := range opts {
		opt(&o)
	}

	exists, err := Exists(dst)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%s: %w", dst, model.ErrAlreadyExists)
	}

	if o.tee != nil {
		r = io.TeeReader(r, o.tee)
	}

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".petrd-*.part")
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create temporary file: %w", model.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful publish

	_ = os.Chmod(tmpPath, filePerm)

	bw := bufio.NewWriterSize(tmp, writeBufferSize)
	n, err := io.Copy(bw, readerWithContext(ctx, r))
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, fmt.Errorf("%w: failed to write %s: %w", model.ErrIO, dst, err)
	}

	if o.expected >= 0 && n != o.expected {
		return n, fmt.Errorf("%w: wrote %d bytes to %s, expected %d", model.ErrSizeMismatch, n, dst, o.expected)
	}

	if err := publish(tmpPath, dst); err != nil {
		return n, err
	}
	_ = syncDir(dir)
	return n, nil
}

// CopyNew copies the file at src into a new file at dst with the guarantees
// of WriteNew.
func CopyNew(ctx context.Context, src, dst string, opts ...WriteOption) (int64, error) {
	f, err := os.Open(src) //nolint:gosec // src is a sidecar next to an operator-chosen input
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	defer f.Close()

	return WriteNew(ctx, dst, f, opts...)
}

// Replace atomically replaces the content of an existing file at dst.
// It is used to update outputs this tool created earlier in the same run.
func Replace(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".petrd-*.part")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file: %w", model.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful replace

	_ = os.Chmod(tmpPath, filePerm)

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", model.ErrIO, dst, err)
	}
	if err := replace(tmpPath, dst); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %w", model.ErrIO, dst, err)
	}
	_ = syncDir(dir)
	return nil
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}
	return cr.r.Read(p)
}
