//go:build unix

package fsio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"github.com/nao1215/petrd/internal/model"
)

// publish gives tmpPath the name dst. A hard link fails with EEXIST when dst
// is taken, which makes the check and the creation a single step.
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

// syncDir fsyncs dir so the new directory entry survives a crash.
func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd) //nolint:errcheck // read-only descriptor
	return unix.Fsync(fd)
}
