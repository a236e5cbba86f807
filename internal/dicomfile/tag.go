package dicomfile

import "fmt"

// Tag is a DICOM (group, element) pair.
type Tag struct {
	Group   uint16
	Element uint16
}

// String formats the tag as "(gggg,eeee)" in lowercase hex.
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Standard attributes.
var (
	TagImageType    = Tag{0x0008, 0x0008}
	TagManufacturer = Tag{0x0008, 0x0070}
	TagModelName    = Tag{0x0008, 0x1090}
)

// Siemens mMR private attributes.
var (
	// TagSiemensHeader holds the Interfile header.
	TagSiemensHeader = Tag{0x0029, 0x1010}
	// TagSiemensHeaderSV10 holds the header when TagSiemensHeader carries
	// the SV10 marker.
	TagSiemensHeaderSV10 = Tag{0x0029, 0x1110}
	// TagSiemensPayload holds the embedded raw data.
	TagSiemensPayload = Tag{0x7fe1, 0x1010}
)

// GE PET private attributes.
var (
	TagGERawDataType     = Tag{0x0021, 0x1001}
	TagGESinogramType    = Tag{0x0009, 0x1019}
	TagGECalibrationType = Tag{0x0017, 0x1006}
	// TagGEPayload holds the RDF blob.
	TagGEPayload = Tag{0x0023, 0x1002}
)
