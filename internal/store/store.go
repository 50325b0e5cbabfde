// Package store persists reconciliation run history in a local SQLite
// database. One row per run plus the matched records it produced; written
// once by the batch finalize step, read back for the run history endpoint.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ngocvo/rollcall/internal/attendance"
)

// Run is one persisted batch run.
type Run struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Matched     int        `json:"matched"`
	Errors      int        `json:"errors"`
	OutputFile  string     `json:"output_file,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun writes a finished run and its matched records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, records []attendance.MissingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var completedAt any
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, total, matched, errors, output_file, started_at, completed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Status,
		run.Total,
		run.Matched,
		run.Errors,
		nullableString(run.OutputFile),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, record := range records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO matched_records (run_id, person_name, date, weekday, issue_kind, description, matched_image, distance)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			record.PersonName,
			record.Date,
			record.Weekday,
			string(record.IssueKind),
			record.Description,
			nullableString(record.MatchedImage),
			record.Distance,
		)
		if err != nil {
			return fmt.Errorf("insert matched record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns persisted runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, total, matched, errors, output_file, started_at, completed_at
         FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			outputFile  sql.NullString
			startedAt   string
			completedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.Status, &run.Total, &run.Matched,
			&run.Errors, &outputFile, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.OutputFile = outputFile.String
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = ts
		}
		if completedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
				run.CompletedAt = &ts
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRecords returns the matched records persisted for one run, in insert
// order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]attendance.MissingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT person_name, date, weekday, issue_kind, description, matched_image, distance
         FROM matched_records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matched records: %w", err)
	}
	defer rows.Close()

	var records []attendance.MissingRecord
	for rows.Next() {
		var (
			record       attendance.MissingRecord
			kind         string
			weekday      sql.NullString
			description  sql.NullString
			matchedImage sql.NullString
			distance     sql.NullFloat64
		)
		if err := rows.Scan(&record.PersonName, &record.Date, &weekday, &kind,
			&description, &matchedImage, &distance); err != nil {
			return nil, fmt.Errorf("scan matched record: %w", err)
		}
		record.IssueKind = attendance.IssueKind(kind)
		record.Weekday = weekday.String
		record.Description = description.String
		record.MatchedImage = matchedImage.String
		record.Distance = distance.Float64
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
