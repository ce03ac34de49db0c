package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aristanetworks/anta/pkg/results"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	status TEXT NOT NULL,
	error_status INTEGER NOT NULL,
	total INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	test TEXT NOT NULL,
	categories TEXT NOT NULL,
	description TEXT NOT NULL,
	custom_field TEXT NOT NULL,
	result TEXT NOT NULL,
	messages TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
`

// History persists run results to a SQLite database so successive runs can
// be compared after the fact.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) a run-history database.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", path, err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history db: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun appends a run and all its results in one transaction, returning
// the new run's id.
func (h *History) SaveRun(ctx context.Context, m *results.Manager) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(started_at, status, error_status, total) VALUES(?, ?, ?, ?)`,
		time.Now().Unix(), string(m.Status()), boolToInt(m.ErrorStatus()), m.GetTotalResults())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results(run_id, name, test, categories, description, custom_field, result, messages)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range m.Results() {
		_, err := stmt.ExecContext(ctx, runID,
			r.Name, r.Test,
			strings.Join(r.Categories, ","),
			r.Description, r.CustomField,
			string(r.Result),
			strings.Join(r.Messages, "\n"))
		if err != nil {
			return 0, fmt.Errorf("inserting result %s/%s: %w", r.Name, r.Test, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID          int64
	StartedAt   time.Time
	Status      string
	ErrorStatus bool
	Total       int
}

// ListRuns returns the most recent runs, newest first.
func (h *History) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started_at, status, error_status, total FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started int64
		var errStatus int
		if err := rows.Scan(&s.ID, &started, &s.Status, &errStatus, &s.Total); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		s.StartedAt = time.Unix(started, 0)
		s.ErrorStatus = errStatus != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
