package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/petrd/internal/dicomfile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const listModeHeader = "!INTERFILE:=\r\n" +
	"name of data file:=raw.bf\r\n" +
	"%total listmode word counts:=2\r\n"

// listModeOpener serves a valid Siemens list mode container for every path.
func listModeOpener(path string) (dicomfile.Container, error) {
	return dicomfile.NewMemory(path).
		Set(dicomfile.TagManufacturer, "SIEMENS").
		Set(dicomfile.TagModelName, "Biograph_mMR").
		Set(dicomfile.TagImageType, []string{"ORIGINAL", "PRIMARY", "PET_LISTMODE"}).
		Set(dicomfile.TagSiemensHeader, []byte(listModeHeader)).
		Set(dicomfile.TagSiemensPayload, []byte{1, 2, 3, 4, 5, 6, 7, 8}), nil
}

// unknownOpener serves a readable container from an unsupported vendor.
func unknownOpener(path string) (dicomfile.Container, error) {
	return dicomfile.NewMemory(path).
		Set(dicomfile.TagManufacturer, "ACME IMAGING"), nil
}

// executeRoot runs the root command with args and returns its stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
