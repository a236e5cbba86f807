//go:build !unix && !windows

package fsio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nao1215/petrd/internal/model"
)

func publish(tmpPath, dst string) error {
	if err := os.Link(tmpPath, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", dst, model.ErrAlreadyExists)
		}
		return fmt.Errorf("%w: failed to publish %s: %w", model.ErrIO, dst, err)
	}
	return nil
}

func replace(tmpPath, dst string) error {
	return os.Rename(tmpPath, dst)
}

func syncDir(string) error { return nil }
