package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/petrd/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testOutcome(runID, source string, at time.Time) *model.Outcome {
	o := model.NewOutcome(runID, source)
	o.StartedAt = at
	o.Kind = model.KindSiemensListMode
	o.Verdict = model.Verdict{
		Status:   model.StatusGood,
		Source:   model.Source{Kind: model.SourceEmbedded, Length: 16},
		Expected: 16,
		Actual:   16,
	}
	o.PayloadPath = strings.TrimSuffix(source, ".dcm") + ".l"
	o.PayloadBytes = 16
	o.PayloadDigest = "deadbeef"
	return o
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when missing", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error: %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		_ = db2.Close()
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists || !opts.EnableWAL {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
}

func TestSaveAndQuery(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := testOutcome("run-a", "/data/a.dcm", base)
	if err := db.SaveOutcomes(ctx, []*model.Outcome{first}); err != nil {
		t.Fatalf("SaveOutcomes() error = %v", err)
	}

	second := testOutcome("run-b", "/data/a.dcm", base.Add(time.Hour))
	second.Fail(fmt.Errorf("payload: %w", model.ErrSizeMismatch))
	other := testOutcome("run-b", "/data/b.dcm", base.Add(time.Hour))
	if err := db.SaveOutcomes(ctx, []*model.Outcome{second, nil, other}); err != nil {
		t.Fatalf("SaveOutcomes() error = %v", err)
	}

	t.Run("list sources", func(t *testing.T) {
		t.Parallel()
		sources, err := db.ListSources(ctx)
		if err != nil {
			t.Fatalf("ListSources() error = %v", err)
		}
		if len(sources) != 2 || sources[0] != "/data/a.dcm" || sources[1] != "/data/b.dcm" {
			t.Errorf("ListSources() = %v", sources)
		}
	})

	t.Run("history newest first", func(t *testing.T) {
		t.Parallel()
		records, err := db.History(ctx, "/data/a.dcm")
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("History() returned %d records, want 2", len(records))
		}
		if records[0].Outcome.RunID != "run-b" || records[1].Outcome.RunID != "run-a" {
			t.Errorf("unexpected order: %s, %s", records[0].Outcome.RunID, records[1].Outcome.RunID)
		}
		if !records[1].Timestamp.Equal(base) {
			t.Errorf("Timestamp = %v, want %v", records[1].Timestamp, base)
		}
	})

	t.Run("latest", func(t *testing.T) {
		t.Parallel()
		rec, err := db.Latest(ctx, "/data/a.dcm")
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if rec == nil {
			t.Fatal("Latest() returned nil")
		}
		o := rec.Outcome
		if o.Succeeded() {
			t.Error("latest outcome should be a failure")
		}
		if o.ErrorClass != "size_mismatch" {
			t.Errorf("ErrorClass = %q", o.ErrorClass)
		}
		if o.Kind != model.KindSiemensListMode || o.Verdict.Status != model.StatusGood {
			t.Errorf("outcome not round-tripped: %+v", o)
		}
	})

	t.Run("latest for unknown source", func(t *testing.T) {
		t.Parallel()
		rec, err := db.Latest(ctx, "/data/none.dcm")
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Latest() = %+v, want nil", rec)
		}
	})

	t.Run("run records", func(t *testing.T) {
		t.Parallel()
		records, err := db.RunRecords(ctx, "run-b")
		if err != nil {
			t.Fatalf("RunRecords() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("RunRecords() returned %d records, want 2", len(records))
		}
		if records[0].Outcome.Source != "/data/a.dcm" || records[1].Outcome.Source != "/data/b.dcm" {
			t.Errorf("unexpected order: %s, %s", records[0].Outcome.Source, records[1].Outcome.Source)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-02T03:04:05.5Z", time.Date(2026, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
