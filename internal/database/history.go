package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/petrd/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "petrd.db"

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryDB stores extraction outcomes in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// With CreateIfNotExists unset, a missing database is an error and nothing is
// created on disk.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run an extraction first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw keeps a read-only caller from creating a new file. The busy
	// timeout lets concurrent petrd processes share the file.
	dsn := dbPath + "?mode=rw&_pragma=busy_timeout(5000)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		payload_path TEXT,
		header_path TEXT,
		payload_bytes INTEGER DEFAULT 0,
		payload_digest TEXT,
		error_class TEXT,
		error TEXT,
		timestamp TEXT NOT NULL,
		outcome_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_source ON extractions(source);
	CREATE INDEX IF NOT EXISTS idx_extractions_run ON extractions(run_id);
	CREATE INDEX IF NOT EXISTS idx_extractions_timestamp ON extractions(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Record is a stored extraction outcome.
type Record struct {
	// ID is the row identifier.
	ID int64 `json:"id"`

	// Timestamp is when the file was processed.
	Timestamp time.Time `json:"timestamp"`

	// Outcome is the full outcome as recorded.
	Outcome *model.Outcome `json:"outcome"`
}

const insertOutcome = `
	INSERT INTO extractions (run_id, source, kind, status, payload_path, header_path,
		payload_bytes, payload_digest, error_class, error, timestamp, outcome_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

// SaveOutcomes records every outcome of a run in one transaction.
// Nil outcomes are skipped.
func (h *HistoryDB) SaveOutcomes(ctx context.Context, outcomes []*model.Outcome) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if err := saveOutcome(ctx, tx, o); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcomes: %w", err)
	}
	return nil
}

func saveOutcome(ctx context.Context, tx *sql.Tx, outcome *model.Outcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to serialize outcome: %w", err)
	}

	ts := outcome.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = tx.ExecContext(ctx, insertOutcome,
		outcome.RunID,
		outcome.Source,
		outcome.Kind.String(),
		outcome.Verdict.Status.String(),
		outcome.PayloadPath,
		outcome.HeaderPath,
		outcome.PayloadBytes,
		outcome.PayloadDigest,
		outcome.ErrorClass,
		outcome.ErrorMessage,
		ts.UTC().Format(timestampLayout),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// ListSources returns every source path with at least one record.
func (h *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT source FROM extractions
	ORDER BY source
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// History returns all records for source, newest first.
func (h *HistoryDB) History(ctx context.Context, source string) ([]Record, error) {
	query := `
	SELECT id, timestamp, outcome_json FROM extractions
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue // Skip malformed outcomes
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// Latest returns the newest record for source, or nil when there is none.
func (h *HistoryDB) Latest(ctx context.Context, source string) (*Record, error) {
	query := `
	SELECT id, timestamp, outcome_json FROM extractions
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	rec, err := scanRecord(h.db.QueryRowContext(ctx, query, source))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("failed to parse latest outcome for %s", source)
	}
	return rec, nil
}

// RunRecords returns all records written by one run, in insertion order.
func (h *HistoryDB) RunRecords(ctx context.Context, runID string) ([]Record, error) {
	query := `
	SELECT id, timestamp, outcome_json FROM extractions
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row. A row whose outcome JSON cannot be parsed yields
// a nil record and no error.
func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		timestamp string
		data      string
	)
	if err := row.Scan(&rec.ID, &timestamp, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	var outcome model.Outcome
	if err := json.Unmarshal([]byte(data), &outcome); err != nil {
		return nil, nil //nolint:nilnil // malformed rows are skipped by callers
	}
	rec.Outcome = &outcome
	rec.Timestamp = parseTimestamp(timestamp)
	return &rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
