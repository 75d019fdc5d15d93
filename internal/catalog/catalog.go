// Package catalog keeps an SQLite index of completed runs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	case_label TEXT NOT NULL,
	source TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	output_dir TEXT NOT NULL,
	stages TEXT NOT NULL,
	f1_hz REAL,
	peak_accel_g REAL,
	files INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_case ON runs(case_label, started_at);
`

// Entry is one catalogued run.
type Entry struct {
	ID        string
	Case      string
	Source    string
	Started   time.Time
	Finished  time.Time
	OutputDir string
	Stages    []string
	// F1 is the first natural frequency in Hz, when the modal stage ran.
	F1 *float64
	// PeakAccel is the largest midspan acceleration in g, when the
	// moving-load stage ran.
	PeakAccel *float64
	Files     int
}

// Catalog is an open run index.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database.
func (c *Catalog) Close() error { return c.db.Close() }

// Record stores e, replacing an entry with the same id.
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, case_label, source, started_at, finished_at, output_dir, stages, f1_hz, peak_accel_g, files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Case, e.Source, e.Started.UnixMilli(), e.Finished.UnixMilli(), e.OutputDir,
		strings.Join(e.Stages, ","), nullable(e.F1), nullable(e.PeakAccel), e.Files)
	if err != nil {
		return fmt.Errorf("record run %s: %w", e.ID, err)
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// List returns the runs, newest first. A non-empty label restricts the
// list to that case; limit <= 0 means no limit.
func (c *Catalog) List(ctx context.Context, label string, limit int) ([]Entry, error) {
	q := `SELECT id, case_label, source, started_at, finished_at, output_dir, stages, f1_hz, peak_accel_g, files FROM runs`
	var args []any
	if label != "" {
		q += ` WHERE case_label = ?`
		args = append(args, label)
	}
	q += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			started, finished int64
			stages            string
			f1, peak          sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Case, &e.Source, &started, &finished, &e.OutputDir,
			&stages, &f1, &peak, &e.Files); err != nil {
			return nil, err
		}
		e.Started = time.UnixMilli(started).UTC()
		e.Finished = time.UnixMilli(finished).UTC()
		if stages != "" {
			e.Stages = strings.Split(stages, ",")
		}
		if f1.Valid {
			e.F1 = &f1.Float64
		}
		if peak.Valid {
			e.PeakAccel = &peak.Float64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
