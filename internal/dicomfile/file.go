package dicomfile

import (
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/nao1215/petrd/internal/model"
)

// File is a Container backed by a parsed DICOM dataset.
type File struct {
	path string
	ds   dicom.Dataset
}

// Open parses the DICOM file at path. Files that cannot be opened or are not
// valid DICOM fail with an error wrapping model.ErrIO.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", model.ErrIO, path)
	}

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse DICOM file %s: %w", model.ErrIO, path, err)
	}
	return newFile(path, ds), nil
}

// OpenContainer is Open returning the Container interface.
func OpenContainer(path string) (Container, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func newFile(path string, ds dicom.Dataset) *File {
	return &File{path: path, ds: ds}
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// Text returns the decoded value of t.
func (f *File) Text(t Tag) (string, bool, error) {
	v, ok := f.value(t)
	if !ok {
		return "", false, nil
	}
	s, err := decodeText(v)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", t, err)
	}
	return s, s != "", nil
}

// Bytes returns the raw value of t.
func (f *File) Bytes(t Tag) ([]byte, bool, error) {
	v, ok := f.value(t)
	if !ok {
		return nil, false, nil
	}
	b, err := decodeBytes(v)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", t, err)
	}
	return b, len(b) > 0, nil
}

// Close drops the parsed dataset.
func (f *File) Close() error {
	f.ds = dicom.Dataset{}
	return nil
}

func (f *File) value(t Tag) (any, bool) {
	elem, err := f.ds.FindElementByTag(tag.Tag{Group: t.Group, Element: t.Element})
	if err != nil {
		// dicom.ErrorElementNotFound is the only error FindElementByTag returns.
		return nil, false
	}
	if elem == nil || elem.Value == nil {
		return nil, false
	}
	return elem.Value.GetValue(), true
}
