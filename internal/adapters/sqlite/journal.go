// Package sqlite persists the run journal to a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/monetlab/monet/internal/domain"
	"github.com/monetlab/monet/internal/ports"
)

// schema.sql creates the runs and file_outcomes tables.
//
//go:embed schema.sql
var schemaSQL string

// Journal implements ports.Journal on SQLite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path and applies the schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer at a time; the worker goroutine is the only caller anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun inserts the run row.
func (j *Journal) BeginRun(ctx context.Context, run domain.BatchRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, input_root, output_root, filter, classifier, file_count, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputRoot, run.OutputRoot, run.Filter.String(), run.Classifier, len(run.Files),
		run.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to begin run: %w", err)
	}
	return nil
}

// RecordOutcome inserts one file outcome row.
func (j *Journal) RecordOutcome(ctx context.Context, runID string, o domain.FileOutcome) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO file_outcomes (run_id, file, stage, kept, total, output_path, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, o.File, o.Stage.String(), o.Kept, o.Total, o.OutputPath, o.Detail,
		j.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// FinishRun stores the summary counters on the run row.
func (j *Journal) FinishRun(ctx context.Context, s domain.RunSummary) error {
	var errText sql.NullString
	if s.Err != nil {
		errText = sql.NullString{String: s.Err.Error(), Valid: true}
	}
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, written = ?, skipped_empty = ?, failed = ?,
			not_processed = ?, cancelled = ?, duration_ms = ?, error = ?
		WHERE run_id = ?
	`, j.now().UTC().Format(time.RFC3339Nano), s.Written, s.SkippedEmpty, s.Failed,
		s.NotProcessed, s.Cancelled, s.Duration.Milliseconds(), errText, s.RunID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to finish run: unknown run %q", s.RunID)
	}
	return nil
}

// RunRecord is a journaled run as read back from the database.
type RunRecord struct {
	RunID        string
	InputRoot    string
	OutputRoot   string
	Filter       string
	Classifier   string
	FileCount    int
	Finished     bool
	Written      int
	SkippedEmpty int
	Failed       int
	NotProcessed int
	Cancelled    bool
	Error        string
}

// Run reads back one run.
func (j *Journal) Run(ctx context.Context, runID string) (RunRecord, error) {
	var (
		r                                         RunRecord
		finishedAt, errText                       sql.NullString
		written, skipped, failed, notProc, cancel sql.NullInt64
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT run_id, input_root, output_root, filter, classifier, file_count,
			finished_at, written, skipped_empty, failed, not_processed, cancelled, error
		FROM runs WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.InputRoot, &r.OutputRoot, &r.Filter, &r.Classifier, &r.FileCount,
		&finishedAt, &written, &skipped, &failed, &notProc, &cancel, &errText)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to query run: %w", err)
	}
	r.Finished = finishedAt.Valid
	r.Written = int(written.Int64)
	r.SkippedEmpty = int(skipped.Int64)
	r.Failed = int(failed.Int64)
	r.NotProcessed = int(notProc.Int64)
	r.Cancelled = cancel.Int64 != 0
	r.Error = errText.String
	return r, nil
}

// Outcomes reads back the file outcomes of a run in recording order.
func (j *Journal) Outcomes(ctx context.Context, runID string) ([]domain.FileOutcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT file, stage, kept, total, output_path, detail
		FROM file_outcomes WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.FileOutcome
	for rows.Next() {
		var (
			o             domain.FileOutcome
			stage         string
			path, details sql.NullString
		)
		if err := rows.Scan(&o.File, &stage, &o.Kept, &o.Total, &path, &details); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Stage, err = domain.ParseFileStage(stage)
		if err != nil {
			return nil, err
		}
		o.OutputPath = path.String
		o.Detail = details.String
		out = append(out, o)
	}
	return out, rows.Err()
}

var _ ports.Journal = (*Journal)(nil)
