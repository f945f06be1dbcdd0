package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prodaudit/prodaudit/pkg/audit"

	_ "modernc.org/sqlite"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "prodaudit.sqlite"

var ErrRunNotFound = errors.New("audit run not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS audit_runs (
  id           TEXT PRIMARY KEY,
  brand        TEXT NOT NULL DEFAULT '',
  started_at   TEXT NOT NULL,
  finished_at  TEXT,
  item_count   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS audit_records (
  id           INTEGER PRIMARY KEY,
  run_id       TEXT NOT NULL REFERENCES audit_runs(id) ON DELETE CASCADE,
  position     INTEGER NOT NULL,
  item_name    TEXT NOT NULL,
  brand        TEXT NOT NULL DEFAULT '',
  retailer     TEXT,
  external_id  TEXT,
  source_url   TEXT,
  provenance   TEXT NOT NULL CHECK (provenance IN ('Scraped','Guessed','Fallback')),
  fetched      INTEGER NOT NULL CHECK (fetched IN (0,1)),
  images_found INTEGER NOT NULL DEFAULT 0,
  UNIQUE(run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_records_run ON audit_records(run_id, position);
CREATE TABLE IF NOT EXISTS audit_fields (
  record_id    INTEGER NOT NULL REFERENCES audit_records(id) ON DELETE CASCADE,
  field        TEXT NOT NULL,
  value        TEXT NOT NULL,
  source       TEXT NOT NULL CHECK (source IN ('Scraped','Guessed')),
  PRIMARY KEY(record_id, field)
);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// CreateRun registers a new run and returns it.
func (d *DB) CreateRun(ctx context.Context, brand string, startedAt time.Time) (Run, error) {
	run := Run{ID: uuid.New().String(), Brand: brand, StartedAt: startedAt.UTC()}
	_, err := d.sql.ExecContext(ctx, `INSERT INTO audit_runs(id, brand, started_at) VALUES(?,?,?)`, run.ID, run.Brand, formatTime(run.StartedAt))
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// SaveRecords stores a run's records in report order and marks the run
// finished.
func (d *DB) SaveRecords(ctx context.Context, runID string, records []audit.Record, finishedAt time.Time) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE audit_runs SET finished_at = ?, item_count = ? WHERE id = ?`, formatTime(finishedAt.UTC()), len(records), runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}

	for i, rec := range records {
		res, err = tx.ExecContext(ctx, `INSERT INTO audit_records(run_id, position, item_name, brand, retailer, external_id, source_url, provenance, fetched, images_found) VALUES(?,?,?,?,?,?,?,?,?,?)`,
			runID, i, rec.ItemName, rec.Brand, nullIfEmpty(rec.Retailer), nullIfEmpty(rec.ExternalID), nullIfEmpty(rec.SourceURL), string(rec.Provenance), boolToInt(rec.Fetched), rec.ImagesFound)
		if err != nil {
			return fmt.Errorf("saving record %d: %w", i, err)
		}
		var recordID int64
		if recordID, err = res.LastInsertId(); err != nil {
			return err
		}
		for field, value := range rec.Fields {
			source := rec.FieldSources[field]
			if source == "" {
				source = audit.Scraped
			}
			if _, err = tx.ExecContext(ctx, `INSERT INTO audit_fields(record_id, field, value, source) VALUES(?,?,?,?)`, recordID, field, value, string(source)); err != nil {
				return fmt.Errorf("saving field %q of record %d: %w", field, i, err)
			}
		}
	}

	return tx.Commit()
}

// GetRun returns a run by ID.
func (d *DB) GetRun(ctx context.Context, runID string) (Run, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT id, brand, started_at, finished_at, item_count FROM audit_runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns the most recent runs first. limit <= 0 means 50.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, `SELECT id, brand, started_at, finished_at, item_count FROM audit_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadRecords returns a run's records in their original order.
func (d *DB) LoadRecords(ctx context.Context, runID string) ([]audit.Record, error) {
	if _, err := d.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := d.sql.QueryContext(ctx, `SELECT id, item_name, brand, retailer, external_id, source_url, provenance, fetched, images_found FROM audit_records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}

	var (
		records []audit.Record
		ids     []int64
	)
	for rows.Next() {
		var (
			id                      int64
			rec                     audit.Record
			retailer, extID, srcURL sql.NullString
			provenance              string
			fetched                 int
		)
		if err := rows.Scan(&id, &rec.ItemName, &rec.Brand, &retailer, &extID, &srcURL, &provenance, &fetched, &rec.ImagesFound); err != nil {
			rows.Close()
			return nil, err
		}
		rec.Retailer = retailer.String
		rec.ExternalID = extID.String
		rec.SourceURL = srcURL.String
		rec.Provenance = audit.Provenance(provenance)
		rec.Fetched = fetched == 1
		rec.Fields = make(map[string]string)
		rec.FieldSources = make(map[string]audit.Provenance)
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if err := d.loadFields(ctx, id, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (d *DB) loadFields(ctx context.Context, recordID int64, rec *audit.Record) error {
	rows, err := d.sql.QueryContext(ctx, `SELECT field, value, source FROM audit_fields WHERE record_id = ?`, recordID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var field, value, source string
		if err := rows.Scan(&field, &value, &source); err != nil {
			return err
		}
		rec.Fields[field] = value
		rec.FieldSources[field] = audit.Provenance(source)
	}
	return rows.Err()
}

// GetStats counts records by provenance for the most recent runs.
func (d *DB) GetStats(ctx context.Context, limit int) ([]RunStats, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT
			r.id,
			r.started_at,
			COALESCE(SUM(CASE WHEN a.provenance = 'Scraped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN a.provenance = 'Guessed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN a.provenance = 'Fallback' THEN 1 ELSE 0 END), 0)
		FROM
			audit_runs r
			LEFT JOIN audit_records a ON a.run_id = r.id
		GROUP BY
			r.id, r.started_at
		ORDER BY
			r.started_at DESC, r.id
		LIMIT ?;
	`
	rows, err := d.sql.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []RunStats
	for rows.Next() {
		var s RunStats
		var startedAt string
		if err := rows.Scan(&s.RunID, &startedAt, &s.Scraped, &s.Guessed, &s.Fallback); err != nil {
			return nil, err
		}
		s.StartedAt = parseTime(startedAt)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := s.Scan(&run.ID, &run.Brand, &startedAt, &finishedAt, &run.ItemCount); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return run, nil
}

// timeLayout is fixed-width so that text order is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// Rows written by hand in the sqlite shell.
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
