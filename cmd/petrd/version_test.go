package main

import (
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := executeRoot(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"petrd version", "commit:", "built:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
	if getCommit() == "" || getDate() == "" {
		t.Error("build info helpers returned empty strings")
	}
}
