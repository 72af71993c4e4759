package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/justice-collab/disruption-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS detection_runs (
	id         TEXT PRIMARY KEY,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	records    INTEGER NOT NULL DEFAULT 0,
	reforms    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS disruption_records (
	run_id         TEXT NOT NULL REFERENCES detection_runs(id),
	unit           TEXT NOT NULL,
	year           INTEGER NOT NULL,
	score          REAL NOT NULL,
	classification TEXT NOT NULL,
	direction      TEXT NOT NULL,
	record         TEXT NOT NULL,
	PRIMARY KEY (run_id, unit, year)
);

CREATE TABLE IF NOT EXISTS novel_reforms (
	run_id          TEXT NOT NULL REFERENCES detection_runs(id),
	unit            TEXT NOT NULL,
	year            INTEGER NOT NULL,
	reform_type     TEXT NOT NULL,
	reform_name     TEXT NOT NULL,
	statewide_first INTEGER NOT NULL,
	adoption_rank   INTEGER NOT NULL,
	event           TEXT NOT NULL,
	PRIMARY KEY (run_id, unit, reform_type, reform_name)
);

CREATE TABLE IF NOT EXISTS unit_summaries (
	run_id  TEXT NOT NULL REFERENCES detection_runs(id),
	unit    TEXT NOT NULL,
	summary TEXT NOT NULL,
	PRIMARY KEY (run_id, unit)
);

CREATE INDEX IF NOT EXISTS idx_detection_runs_status ON detection_runs(status);
CREATE INDEX IF NOT EXISTS idx_disruption_records_unit ON disruption_records(unit);
CREATE INDEX IF NOT EXISTS idx_novel_reforms_name ON novel_reforms(reform_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, params model.RunParams) (*model.DetectionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal params")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO detection_runs (id, params, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(paramsJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.DetectionRun{
		ID:        id,
		Params:    params,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) SaveResult(ctx context.Context, runID string, result *model.DetectionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range result.Disruptions {
		rec := &result.Disruptions[i]
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal disruption record")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO disruption_records (run_id, unit, year, score, classification, direction, record)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.Unit, rec.Year, rec.Score, string(rec.Classification), string(rec.Direction), string(recJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert disruption %s/%d", rec.Unit, rec.Year)
		}
	}

	for i := range result.Reforms {
		ev := &result.Reforms[i]
		evJSON, err := json.Marshal(ev)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal reform event")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO novel_reforms (run_id, unit, year, reform_type, reform_name, statewide_first, adoption_rank, event)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, ev.Unit, ev.Year, string(ev.ReformType), ev.ReformName, ev.StatewideFirst, ev.AdoptionRank, string(evJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert reform %s/%s", ev.Unit, ev.ReformName)
		}
	}

	for i := range result.Summaries {
		sum := &result.Summaries[i]
		sumJSON, err := json.Marshal(sum)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal summary")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO unit_summaries (run_id, unit, summary) VALUES (?, ?, ?)`,
			runID, sum.Unit, string(sumJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert summary %s", sum.Unit)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE detection_runs SET status = ?, records = ?, reforms = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), len(result.Disruptions), len(result.Reforms), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	if err := checkRowsAffected(res, "run", runID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit result")
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE detection_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.DetectionRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, params, status, records, reforms, created_at, updated_at FROM detection_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DetectionRun, error) {
	query := `SELECT id, params, status, records, reforms, created_at, updated_at FROM detection_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.DetectionRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.DetectionRun, error) {
	var r model.DetectionRun
	var paramsJSON string

	err := row.Scan(&r.ID, &paramsJSON, &r.Status, &r.Records, &r.Reforms, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(paramsJSON), &r.Params); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal params")
	}
	return &r, nil
}
