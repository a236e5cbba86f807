package dicomfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/nao1215/petrd/internal/model"
)

func mustElement(t *testing.T, tg tag.Tag, v any) *dicom.Element {
	t.Helper()
	elem, err := dicom.NewElement(tg, v)
	if err != nil {
		t.Fatalf("NewElement(%v): %v", tg, err)
	}
	return elem
}

func privateElement(t *testing.T, tg tag.Tag, vr string, v any) *dicom.Element {
	t.Helper()
	val, err := dicom.NewValue(v)
	if err != nil {
		t.Fatalf("NewValue(%v): %v", tg, err)
	}
	kind := tag.VRBytes
	if _, ok := v.([]int); ok {
		kind = tag.VRInt32List
	}
	return &dicom.Element{
		Tag:                    tg,
		ValueRepresentation:    kind,
		RawValueRepresentation: vr,
		Value:                  val,
	}
}

func TestFileLookup(t *testing.T) {
	t.Parallel()

	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tag.Manufacturer, []string{"SIEMENS"}),
		mustElement(t, tag.ImageType, []string{"ORIGINAL", "PRIMARY", "PET_NORM"}),
		privateElement(t, tag.Tag{Group: 0x7fe1, Element: 0x1010}, "OB", []byte{9, 8, 7, 6}),
		privateElement(t, tag.Tag{Group: 0x0021, Element: 0x1001}, "SL", []int{4}),
	}}
	f := newFile("/scans/norm.dcm", ds)

	if v, ok, err := f.Text(TagManufacturer); err != nil || !ok || v != "SIEMENS" {
		t.Errorf("manufacturer = %q, %v, %v", v, ok, err)
	}
	if v, ok, err := f.Text(TagImageType); err != nil || !ok || v != `ORIGINAL\PRIMARY\PET_NORM` {
		t.Errorf("image type = %q, %v, %v", v, ok, err)
	}
	if b, ok, err := f.Bytes(TagSiemensPayload); err != nil || !ok || !bytes.Equal(b, []byte{9, 8, 7, 6}) {
		t.Errorf("payload = %v, %v, %v", b, ok, err)
	}
	if v, ok, err := f.Text(TagGERawDataType); err != nil || !ok || v != "4" {
		t.Errorf("raw data type = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := f.Text(TagModelName); err != nil || ok {
		t.Errorf("absent model name reported ok=%v err=%v", ok, err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.dcm"))
	if !errors.Is(err, model.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	t.Parallel()

	_, err := OpenContainer(t.TempDir())
	if !errors.Is(err, model.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}
