package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
)

// writeDICOM writes a Siemens list mode file holding header and data in
// their private elements and returns its path.
func writeDICOM(t *testing.T, header, data []byte) string {
	t.Helper()

	transferSyntax, err := dicom.NewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"})
	if err != nil {
		t.Fatal(err)
	}
	ds := dicom.Dataset{Elements: []*dicom.Element{
		transferSyntax,
		otherBytes(t, dicomfile.TagSiemensHeader, header),
		otherBytes(t, dicomfile.TagSiemensPayload, data),
	}}

	path := filepath.Join(t.TempDir(), "scan.dcm")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := dicom.Write(f, ds); err != nil {
		t.Fatalf("dicom.Write() error: %v", err)
	}
	return path
}

func otherBytes(t *testing.T, tg dicomfile.Tag, v []byte) *dicom.Element {
	t.Helper()
	val, err := dicom.NewValue(v)
	if err != nil {
		t.Fatal(err)
	}
	return &dicom.Element{
		Tag:                    tag.Tag{Group: tg.Group, Element: tg.Element},
		ValueRepresentation:    tag.VRBytes,
		RawValueRepresentation: "OB",
		Value:                  val,
	}
}

func TestLatin1HeaderFromDICOMFile(t *testing.T) {
	t.Parallel()

	// Even length, so the element carries no padding.
	header := []byte("!INTERFILE:=\r\n" +
		"%patient name:=M\xfcller\r\n" +
		"name of data file:=raw.bf\r\n" +
		"%total listmode word counts:=2\r\n")
	if len(header)%2 != 0 {
		header = append(header, '\n')
	}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	f, err := dicomfile.Open(writeDICOM(t, header, data))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()

	e, err := New(model.KindSiemensListMode, f)
	if err != nil {
		t.Fatal(err)
	}

	if v := e.Validate(); !v.Good() || v.Expected != 8 {
		t.Fatalf("Validate() = %+v", v)
	}

	out := t.TempDir()
	hdrPath := filepath.Join(out, e.HeaderName("scan"))
	if err := e.ExtractHeader(context.Background(), hdrPath); err != nil {
		t.Fatalf("ExtractHeader() error: %v", err)
	}
	if got := readFile(t, hdrPath); !bytes.Equal(got, header) {
		t.Errorf("header = %q, want %q", got, header)
	}

	payloadPath := filepath.Join(out, e.PayloadName("scan"))
	if _, n, err := e.ExtractPayload(context.Background(), payloadPath); err != nil || n != 8 {
		t.Fatalf("ExtractPayload() = %d, %v", n, err)
	}
	if got := readFile(t, payloadPath); !bytes.Equal(got, data) {
		t.Errorf("payload = %v", got)
	}
}
