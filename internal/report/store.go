package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// Run is one stored theme run.
type Run struct {
	ID       uuid.UUID
	Theme    string
	Started  time.Time
	Features int
	Nodes    int
	Edges    int
	Total    int    // errors found, stored or not
	Dropped  int    // errors not stored because of the error limit
	Failure  string // build or detection failure, if any

	// Records is empty when runs are listed.
	Records []defect.Record
}

// SQLiteStore keeps theme runs and their errors in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			theme TEXT NOT NULL,
			started_at TEXT NOT NULL,
			features INTEGER,
			nodes INTEGER,
			edges INTEGER,
			total INTEGER,
			dropped INTEGER,
			failure TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS errors (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			x REAL,
			y REAL,
			wkt TEXT,
			message TEXT,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS params (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			pos INTEGER NOT NULL,
			key TEXT NOT NULL,
			value TEXT,
			PRIMARY KEY (run_id, seq, pos)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_errors_kind ON errors(run_id, kind);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores run and its records in one transaction. Messages are
// rendered with f.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, f Formatter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, theme, started_at, features, nodes, edges, total, dropped, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.Theme, run.Started.UTC().Format(time.RFC3339Nano),
		run.Features, run.Nodes, run.Edges, run.Total, run.Dropped, run.Failure)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	errStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO errors (run_id, seq, kind, x, y, wkt, message) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer errStmt.Close()

	paramStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO params (run_id, seq, pos, key, value) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer paramStmt.Close()

	id := run.ID.String()
	for seq, r := range run.Records {
		text, err := WKT(r)
		if err != nil {
			return fmt.Errorf("failed to render record %d: %w", seq, err)
		}
		if _, err := errStmt.ExecContext(ctx, id, seq, r.Kind.String(), r.X, r.Y, text, f.Format(r)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", seq, err)
		}
		for pos, p := range r.Params {
			if _, err := paramStmt.ExecContext(ctx, id, seq, pos, p.Key, p.Value); err != nil {
				return fmt.Errorf("failed to insert record %d: %w", seq, err)
			}
		}
	}

	return tx.Commit()
}

// Runs lists the stored runs, oldest first, without their records.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, theme, started_at, features, nodes, edges, total, dropped, failure
		FROM runs ORDER BY started_at, theme
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var id, started string
		var failure sql.NullString
		if err := rows.Scan(&id, &run.Theme, &started, &run.Features, &run.Nodes, &run.Edges,
			&run.Total, &run.Dropped, &failure); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run %q: %w", id, err)
		}
		if run.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %q: %w", id, err)
		}
		run.Failure = failure.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Records returns the stored records of a run in the order they were found.
func (s *SQLiteStore) Records(ctx context.Context, runID uuid.UUID) ([]defect.Record, error) {
	id := runID.String()

	rows, err := s.db.QueryContext(ctx, `SELECT kind, x, y FROM errors WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []defect.Record
	for rows.Next() {
		var name string
		var r defect.Record
		if err := rows.Scan(&name, &r.X, &r.Y); err != nil {
			return nil, err
		}
		if r.Kind, err = defect.ParseKind(name); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, `SELECT seq, key, value FROM params WHERE run_id = ? ORDER BY seq, pos`, id)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var seq int
		var p defect.Param
		if err := prows.Scan(&seq, &p.Key, &p.Value); err != nil {
			return nil, err
		}
		if seq < 0 || seq >= len(records) {
			return nil, fmt.Errorf("parameter of unknown record %d", seq)
		}
		records[seq].Params = append(records[seq].Params, p)
	}
	return records, prows.Err()
}

// Messages returns the stored message of every record of a run, in order.
func (s *SQLiteStore) Messages(ctx context.Context, runID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message FROM errors WHERE run_id = ? ORDER BY seq`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountByKind returns how many records of each kind a run stored.
func (s *SQLiteStore) CountByKind(ctx context.Context, runID uuid.UUID) (map[defect.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM errors WHERE run_id = ? GROUP BY kind
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[defect.Kind]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		k, err := defect.ParseKind(name)
		if err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := runID.String()
	for _, q := range []string{
		`DELETE FROM params WHERE run_id = ?`,
		`DELETE FROM errors WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
