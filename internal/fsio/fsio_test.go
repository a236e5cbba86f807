package fsio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/petrd/internal/model"
)

func TestSidecarPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		src      string
		expected string
	}{
		{"/data/scan.dcm", "/data/scan.bf"},
		{"/data/scan.IMA", "/data/scan.bf"},
		{"/data/scan", "/data/scan.bf"},
		{"relative/a.b.dcm", "relative/a.b.bf"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			if got := SidecarPath(tc.src); got != tc.expected {
				t.Errorf("SidecarPath(%q) = %q, expected %q", tc.src, got, tc.expected)
			}
		})
	}
}

func TestStem(t *testing.T) {
	t.Parallel()

	if got := Stem("/in/scan.01.dcm"); got != "scan.01" {
		t.Errorf("Stem() = %q", got)
	}
}

func TestSizeAndExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.bf")
	if err := os.WriteFile(path, make([]byte, 1234), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := Size(path)
	if err != nil || n != 1234 {
		t.Errorf("Size() = %d, %v", n, err)
	}

	ok, err := Exists(path)
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}

	missing := filepath.Join(dir, "missing.bf")
	if ok, err := Exists(missing); err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	if _, err := Size(missing); !errors.Is(err, model.ErrIO) {
		t.Errorf("Size(missing) error = %v, expected ErrIO", err)
	}
}

func TestWriteNew(t *testing.T) {
	t.Parallel()

	t.Run("writes content and tees", func(t *testing.T) {
		t.Parallel()
		dst := filepath.Join(t.TempDir(), "out.l")
		var tee bytes.Buffer

		n, err := WriteNew(context.Background(), dst, strings.NewReader("payload"), WithTee(&tee), WithExpectedSize(7))
		if err != nil {
			t.Fatalf("WriteNew() error: %v", err)
		}
		if n != 7 {
			t.Errorf("n = %d", n)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "payload" || tee.String() != "payload" {
			t.Errorf("content = %q, tee = %q", got, tee.String())
		}
		assertNoTemporaryFiles(t, filepath.Dir(dst))
	})

	t.Run("refuses existing destination", func(t *testing.T) {
		t.Parallel()
		dst := filepath.Join(t.TempDir(), "out.l")
		if err := os.WriteFile(dst, []byte("original"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := WriteNew(context.Background(), dst, strings.NewReader("new"))
		if !errors.Is(err, model.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		got, _ := os.ReadFile(dst)
		if string(got) != "original" {
			t.Errorf("destination was modified: %q", got)
		}
	})

	t.Run("size mismatch leaves nothing", func(t *testing.T) {
		t.Parallel()
		dst := filepath.Join(t.TempDir(), "out.n")

		_, err := WriteNew(context.Background(), dst, strings.NewReader("short"), WithExpectedSize(10))
		if !errors.Is(err, model.ErrSizeMismatch) {
			t.Fatalf("expected ErrSizeMismatch, got %v", err)
		}
		if ok, _ := Exists(dst); ok {
			t.Error("destination must not exist after a failed write")
		}
		assertNoTemporaryFiles(t, filepath.Dir(dst))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		dst := filepath.Join(t.TempDir(), "out.s")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := WriteNew(ctx, dst, strings.NewReader("data"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if ok, _ := Exists(dst); ok {
			t.Error("destination must not exist after cancellation")
		}
	})
}

func TestCopyNew(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bf")
	if err := os.WriteFile(src, []byte{1, 2, 3, 4}, 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := CopyNew(context.Background(), src, filepath.Join(dir, "scan.l"))
	if err != nil || n != 4 {
		t.Errorf("CopyNew() = %d, %v", n, err)
	}

	if _, err := CopyNew(context.Background(), filepath.Join(dir, "none.bf"), filepath.Join(dir, "x.l")); !errors.Is(err, model.ErrIO) {
		t.Errorf("expected ErrIO for missing source, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "scan.l.hdr")
	if err := os.WriteFile(dst, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Replace(dst, []byte("new")); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "new" {
		t.Errorf("content = %q", got)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scan.ptd")
	if err := os.WriteFile(path, []byte("0123456789"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, offset, err := Tail(path, 4)
	if err != nil || string(data) != "6789" || offset != 6 {
		t.Errorf("Tail(4) = %q, %d, %v", data, offset, err)
	}

	data, offset, err = Tail(path, 100)
	if err != nil || string(data) != "0123456789" || offset != 0 {
		t.Errorf("Tail(100) = %q, %d, %v", data, offset, err)
	}
}

func assertNoTemporaryFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
