package model

import (
	"fmt"
	"strings"
)

// Vendor identifies the scanner manufacturer a file kind belongs to.
type Vendor int

const (
	// VendorNone is used for KindUnknown and KindError.
	VendorNone Vendor = iota
	// VendorSiemens is the Siemens Biograph mMR.
	VendorSiemens
	// VendorGE is GE Medical Systems PET.
	VendorGE
)

// String returns the lowercase vendor name.
func (v Vendor) String() string {
	switch v {
	case VendorSiemens:
		return "siemens"
	case VendorGE:
		return "ge"
	default:
		return "none"
	}
}

// FileKind is the closed set of raw data kinds recognized by the classifier.
type FileKind int

const (
	// KindUnknown means the file was readable but is not a supported raw file.
	KindUnknown FileKind = iota
	// KindError means classification failed because a required tag was missing
	// or unreadable.
	KindError
	// KindSiemensListMode is a Siemens mMR list mode file.
	KindSiemensListMode
	// KindSiemensSinogram is a Siemens mMR emission sinogram.
	KindSiemensSinogram
	// KindSiemensNorm is a Siemens mMR normalization file.
	KindSiemensNorm
	// KindGESinogram is a GE PET sinogram.
	KindGESinogram
	// KindGECTAC is a GE CT attenuation correction file.
	KindGECTAC
	// KindGENorm2D is a GE 2D normalization file.
	KindGENorm2D
	// KindGENorm3D is a GE 3D normalization file.
	KindGENorm3D
	// KindGEGeometry is a GE geometric calibration file.
	KindGEGeometry
)

var kindNames = map[FileKind]string{
	KindUnknown:         "unknown",
	KindError:           "error",
	KindSiemensListMode: "siemens-listmode",
	KindSiemensSinogram: "siemens-sinogram",
	KindSiemensNorm:     "siemens-norm",
	KindGESinogram:      "ge-sinogram",
	KindGECTAC:          "ge-ctac",
	KindGENorm2D:        "ge-norm2d",
	KindGENorm3D:        "ge-norm3d",
	KindGEGeometry:      "ge-geometry",
}

// AllKinds returns every file kind in declaration order.
func AllKinds() []FileKind {
	return []FileKind{
		KindUnknown, KindError,
		KindSiemensListMode, KindSiemensSinogram, KindSiemensNorm,
		KindGESinogram, KindGECTAC, KindGENorm2D, KindGENorm3D, KindGEGeometry,
	}
}

// String returns the stable name of the kind, used in reports and the database.
func (k FileKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Vendor returns the manufacturer of the kind.
func (k FileKind) Vendor() Vendor {
	switch k {
	case KindSiemensListMode, KindSiemensSinogram, KindSiemensNorm:
		return VendorSiemens
	case KindGESinogram, KindGECTAC, KindGENorm2D, KindGENorm3D, KindGEGeometry:
		return VendorGE
	default:
		return VendorNone
	}
}

// Supported reports whether an extractor exists for the kind.
func (k FileKind) Supported() bool {
	return k.Vendor() != VendorNone
}

// ParseFileKind converts a name produced by String back to a FileKind.
func ParseFileKind(s string) (FileKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds() {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: unknown file kind %q", ErrDecode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k FileKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FileKind) UnmarshalText(b []byte) error {
	parsed, err := ParseFileKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
