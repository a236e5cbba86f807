package classify

import (
	"errors"
	"testing"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
)

func siemens(imageType []string) *dicomfile.Memory {
	return dicomfile.NewMemory("siemens.dcm").
		Set(dicomfile.TagManufacturer, "SIEMENS").
		Set(dicomfile.TagModelName, "Biograph_mMR").
		Set(dicomfile.TagImageType, imageType)
}

func ge(rawType any, subTag dicomfile.Tag, sub any) *dicomfile.Memory {
	c := dicomfile.NewMemory("ge.dcm").
		Set(dicomfile.TagManufacturer, "GE MEDICAL SYSTEMS").
		Set(dicomfile.TagGERawDataType, rawType)
	if sub != nil {
		c.Set(subTag, sub)
	}
	return c
}

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		container dicomfile.Container
		want      model.FileKind
	}{
		{"siemens list mode", siemens([]string{"ORIGINAL", "PRIMARY", "PET_LISTMODE"}), model.KindSiemensListMode},
		{"siemens sinogram", siemens([]string{"ORIGINAL", "PRIMARY", "PET_EM_SINO"}), model.KindSiemensSinogram},
		{"siemens norm", siemens([]string{"ORIGINAL", "PRIMARY", "PET_NORM"}), model.KindSiemensNorm},
		{"siemens other image type", siemens([]string{"DERIVED", "SECONDARY"}), model.KindUnknown},
		{
			"siemens other model",
			dicomfile.NewMemory("x.dcm").
				Set(dicomfile.TagManufacturer, "SIEMENS").
				Set(dicomfile.TagModelName, "Biograph64").
				Set(dicomfile.TagImageType, []string{"ORIGINAL", "PRIMARY", "PET_LISTMODE"}),
			model.KindUnknown,
		},
		{"ge sinogram", ge("3", dicomfile.TagGESinogramType, "0"), model.KindGESinogram},
		{"ge ctac", ge("3", dicomfile.TagGESinogramType, "5"), model.KindGECTAC},
		{"ge sinogram other subtype", ge("3", dicomfile.TagGESinogramType, "1"), model.KindUnknown},
		{"ge norm 2d", ge("4", dicomfile.TagGECalibrationType, "0"), model.KindGENorm2D},
		{"ge norm 3d", ge("4", dicomfile.TagGECalibrationType, "2"), model.KindGENorm3D},
		{"ge norm other", ge("4", dicomfile.TagGECalibrationType, "3"), model.KindUnknown},
		{"ge geometry", ge("5", dicomfile.TagGECalibrationType, "3"), model.KindGEGeometry},
		{"ge geometry wrong subtype", ge("5", dicomfile.TagGECalibrationType, "0"), model.KindUnknown},
		{"ge well counter", ge("7", dicomfile.TagGECalibrationType, nil), model.KindUnknown},
		{"ge numeric raw type", ge([]int{3}, dicomfile.TagGESinogramType, []int{5}), model.KindGECTAC},
		{"ge binary raw type", ge([]byte{0x04, 0x00}, dicomfile.TagGECalibrationType, []byte{0x02, 0x00}), model.KindGENorm3D},
		{"ge padded value", ge("3 ", dicomfile.TagGESinogramType, " 0"), model.KindGESinogram},
		{"ge exact match only", ge("33", dicomfile.TagGESinogramType, "0"), model.KindUnknown},
		{"other vendor", dicomfile.NewMemory("p.dcm").Set(dicomfile.TagManufacturer, "Philips"), model.KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tc.container)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Classify() = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		container dicomfile.Container
	}{
		{"no manufacturer", dicomfile.NewMemory("a.dcm")},
		{"siemens without model", dicomfile.NewMemory("a.dcm").
			Set(dicomfile.TagManufacturer, "SIEMENS").
			Set(dicomfile.TagImageType, []string{"ORIGINAL"})},
		{"siemens without image type", dicomfile.NewMemory("a.dcm").
			Set(dicomfile.TagManufacturer, "SIEMENS").
			Set(dicomfile.TagModelName, "Biograph_mMR")},
		{"ge without raw type", dicomfile.NewMemory("a.dcm").
			Set(dicomfile.TagManufacturer, "GE MEDICAL SYSTEMS")},
		{"ge without sinogram type", ge("3", dicomfile.TagGESinogramType, nil)},
		{"ge without calibration type", ge("4", dicomfile.TagGECalibrationType, nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tc.container)
			if got != model.KindError {
				t.Errorf("Classify() = %v, expected KindError", got)
			}
			if !errors.Is(err, model.ErrMissingField) {
				t.Errorf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestClassifyDecodeError(t *testing.T) {
	t.Parallel()

	c := dicomfile.NewMemory("a.dcm").Set(dicomfile.TagManufacturer, struct{}{})
	got, err := New(WithLogger(nil)).Classify(c)
	if got != model.KindError || !errors.Is(err, model.ErrDecode) {
		t.Errorf("Classify() = %v, %v", got, err)
	}
}
