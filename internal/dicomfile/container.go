package dicomfile

// Container is read access to the elements of one DICOM file.
//
// Text and Bytes report ok=false when the element is absent or empty; they
// return an error wrapping model.ErrDecode only when the element exists but
// cannot be interpreted.
type Container interface {
	// Path is the file system path of the container.
	Path() string

	// Text returns the decoded value of t.
	Text(t Tag) (value string, ok bool, err error)

	// Bytes returns the raw value of t.
	Bytes(t Tag) (value []byte, ok bool, err error)

	// Close releases resources held by the container.
	Close() error
}
