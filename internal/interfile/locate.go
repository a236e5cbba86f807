package interfile

import (
	"bytes"
	"fmt"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
)

// sv10Marker in the primary header element means the real header is stored
// in dicomfile.TagSiemensHeaderSV10.
var sv10Marker = []byte("SV10")

// Locate reads the Interfile header embedded in a Siemens container. The
// header text is kept byte for byte apart from trailing NUL padding.
func Locate(c dicomfile.Container) (*Header, error) {
	primary, _, err := c.Bytes(dicomfile.TagSiemensHeader)
	if err != nil {
		return nil, err
	}

	t := dicomfile.TagSiemensHeader
	if bytes.Contains(primary, sv10Marker) {
		t = dicomfile.TagSiemensHeaderSV10
	}

	raw := primary
	if t != dicomfile.TagSiemensHeader {
		if raw, _, err = c.Bytes(t); err != nil {
			return nil, err
		}
	}
	// Only the NUL padding is DICOM's; everything else, including bytes
	// outside UTF-8 such as Latin-1 patient names, belongs to the header.
	raw = bytes.TrimRight(raw, "\x00")
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: Interfile header %s in %s", model.ErrMissingField, t, c.Path())
	}
	return New(string(raw)), nil
}
