package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nao1215/petrd/internal/model"
)

func goodOutcome(bytes int64) *model.Outcome {
	o := model.NewOutcome("run", "/data/a.dcm")
	o.Kind = model.KindSiemensNorm
	o.Verdict = model.Verdict{Status: model.StatusGood, Source: model.Source{Kind: model.SourceEmbedded, Length: bytes}}
	o.PayloadBytes = bytes
	o.Duration = 200 * time.Millisecond
	return o
}

func TestObserve(t *testing.T) {
	t.Parallel()

	m := New()
	m.Observe(goodOutcome(100))
	m.Observe(goodOutcome(50))

	bad := model.NewOutcome("run", "/data/b.dcm")
	bad.Kind = model.KindSiemensListMode
	bad.Verdict.Status = model.StatusSizeMismatch
	bad.Fail(fmt.Errorf("x: %w", model.ErrSizeMismatch))
	m.Observe(bad)
	m.Observe(nil)

	if got := testutil.ToFloat64(m.FilesProcessed.WithLabelValues("siemens-norm", "good")); got != 2 {
		t.Errorf("good norm files = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FilesProcessed.WithLabelValues("siemens-listmode", "size_mismatch")); got != 1 {
		t.Errorf("mismatched list mode files = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("size_mismatch")); got != 1 {
		t.Errorf("size_mismatch failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PayloadBytes.WithLabelValues("embedded")); got != 150 {
		t.Errorf("embedded bytes = %v, want 150", got)
	}
	if got := testutil.CollectAndCount(m.FileDuration); got != 1 {
		t.Errorf("histogram collectors = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSummary(model.NewRunSummary("run", time.Now(), []*model.Outcome{goodOutcome(10)}))

	path := filepath.Join(t.TempDir(), "petrd.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`petrd_files_processed_total{kind="siemens-norm",status="good"} 1`,
		`petrd_payload_bytes_total{source="embedded"} 10`,
		"petrd_last_run_timestamp_seconds",
		"petrd_file_duration_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()

	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "petrd.prom"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
