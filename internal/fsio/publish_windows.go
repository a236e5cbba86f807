//go:build windows

package fsio

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/nao1215/petrd/internal/model"
)

// publish moves tmpPath to dst. Without MOVEFILE_REPLACE_EXISTING the move
// fails when dst exists.
func publish(tmpPath, dst string) error {
	err := move(tmpPath, dst, windows.MOVEFILE_WRITE_THROUGH)
	if err == nil {
		return nil
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) || errors.Is(err, windows.ERROR_FILE_EXISTS) {
		return fmt.Errorf("%s: %w", dst, model.ErrAlreadyExists)
	}
	return fmt.Errorf("%w: failed to publish %s: %w", model.ErrIO, dst, err)
}

func replace(tmpPath, dst string) error {
	return move(tmpPath, dst, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
}

func move(from, to string, flags uint32) error {
	fromp, err := windows.UTF16PtrFromString(from)
	if err != nil {
		return err
	}
	top, err := windows.UTF16PtrFromString(to)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(fromp, top, flags)
}

// syncDir is a no-op on Windows; directory handles cannot be flushed.
func syncDir(string) error { return nil }
