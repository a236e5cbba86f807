package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/payload"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	exp, err := payload.ListMode(2)
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name       string
		embedded   []byte
		sidecar    []byte
		wantStatus model.Status
		wantSource model.SourceKind
		wantActual int64
	}{
		{"embedded good", make([]byte, 8), nil, model.StatusGood, model.SourceEmbedded, 8},
		{"sidecar good", make([]byte, 3), make([]byte, 8), model.StatusGood, model.SourceSidecar, 8},
		{"sidecar wrong size", make([]byte, 3), make([]byte, 7), model.StatusSizeMismatch, model.SourceNone, 7},
		{"no sidecar", make([]byte, 3), nil, model.StatusIOError, model.SourceNone, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			src := filepath.Join(t.TempDir(), "scan.dcm")
			c := dicomfile.NewMemory(src).Set(dicomfile.TagSiemensPayload, tc.embedded)
			if tc.sidecar != nil {
				if err := os.WriteFile(fsio.SidecarPath(src), tc.sidecar, 0o600); err != nil {
					t.Fatal(err)
				}
			}

			v := Check(c, dicomfile.TagSiemensPayload, exp, fsio.SidecarPath(src))
			if v.Status != tc.wantStatus {
				t.Errorf("Status = %v, expected %v (%s)", v.Status, tc.wantStatus, v.Reason)
			}
			if v.Source.Kind != tc.wantSource {
				t.Errorf("Source = %v, expected %v", v.Source.Kind, tc.wantSource)
			}
			if v.Expected != 8 || v.Actual != tc.wantActual {
				t.Errorf("Expected/Actual = %d/%d", v.Expected, v.Actual)
			}
			if v.Good() != (v.Reason == "") {
				t.Errorf("reason %q inconsistent with status %v", v.Reason, v.Status)
			}
		})
	}
}

func TestCheckPresence(t *testing.T) {
	t.Parallel()

	t.Run("non-empty blob", func(t *testing.T) {
		t.Parallel()
		c := dicomfile.NewMemory("ge.dcm").Set(dicomfile.TagGEPayload, []byte("RDF"))
		v := CheckPresence(c, dicomfile.TagGEPayload, "")
		if !v.Good() || v.Expected != -1 || v.Actual != 3 {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("sidecar exists", func(t *testing.T) {
		t.Parallel()
		src := filepath.Join(t.TempDir(), "sino.dcm")
		if err := os.WriteFile(fsio.SidecarPath(src), []byte{1}, 0o600); err != nil {
			t.Fatal(err)
		}
		v := CheckPresence(dicomfile.NewMemory(src), dicomfile.TagSiemensPayload, fsio.SidecarPath(src))
		if !v.Good() || v.Source.Kind != model.SourceSidecar {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		t.Parallel()
		v := CheckPresence(dicomfile.NewMemory("ge.dcm"), dicomfile.TagGEPayload, "")
		if v.Status != model.StatusIOError {
			t.Errorf("verdict = %+v", v)
		}
	})
}
