package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/justice-collab/disruption-cli/internal/config"
	"github.com/justice-collab/disruption-cli/internal/db"
	"github.com/justice-collab/disruption-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection
// for the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO detection_runs (id, params, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE detection_runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":      `UPDATE detection_runs SET status = $1, records = $2, reforms = $3, updated_at = $4 WHERE id = $5`,
	"get_run":           `SELECT id, params, status, records, reforms, created_at, updated_at FROM detection_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg.MaxConns > 0 {
		maxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		minConns = poolCfg.MinConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS detection_runs (
	id         TEXT PRIMARY KEY,
	params     JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	records    INTEGER NOT NULL DEFAULT 0,
	reforms    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS disruption_records (
	run_id         TEXT NOT NULL REFERENCES detection_runs(id),
	unit           TEXT NOT NULL,
	year           INTEGER NOT NULL,
	score          DOUBLE PRECISION NOT NULL,
	classification TEXT NOT NULL,
	direction      TEXT NOT NULL,
	record         JSONB NOT NULL,
	PRIMARY KEY (run_id, unit, year)
);

CREATE TABLE IF NOT EXISTS novel_reforms (
	run_id          TEXT NOT NULL REFERENCES detection_runs(id),
	unit            TEXT NOT NULL,
	year            INTEGER NOT NULL,
	reform_type     TEXT NOT NULL,
	reform_name     TEXT NOT NULL,
	statewide_first BOOLEAN NOT NULL,
	adoption_rank   INTEGER NOT NULL,
	event           JSONB NOT NULL,
	PRIMARY KEY (run_id, unit, reform_type, reform_name)
);

CREATE TABLE IF NOT EXISTS unit_summaries (
	run_id  TEXT NOT NULL REFERENCES detection_runs(id),
	unit    TEXT NOT NULL,
	summary JSONB NOT NULL,
	PRIMARY KEY (run_id, unit)
);

CREATE INDEX IF NOT EXISTS idx_detection_runs_status ON detection_runs(status);
CREATE INDEX IF NOT EXISTS idx_disruption_records_unit ON disruption_records(unit);
CREATE INDEX IF NOT EXISTS idx_novel_reforms_name ON novel_reforms(reform_name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, params model.RunParams) (*model.DetectionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal params")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO detection_runs (id, params, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, paramsJSON, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.DetectionRun{
		ID:        id,
		Params:    params,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SaveResult bulk-inserts the three output tables via COPY and marks
// the run complete.
func (s *PostgresStore) SaveResult(ctx context.Context, runID string, result *model.DetectionResult) error {
	recordRows := make([][]any, 0, len(result.Disruptions))
	for i := range result.Disruptions {
		rec := &result.Disruptions[i]
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal disruption record")
		}
		recordRows = append(recordRows, []any{
			runID, rec.Unit, rec.Year, rec.Score,
			string(rec.Classification), string(rec.Direction), recJSON,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "disruption_records",
		[]string{"run_id", "unit", "year", "score", "classification", "direction", "record"},
		recordRows,
	); err != nil {
		return err
	}

	reformRows := make([][]any, 0, len(result.Reforms))
	for i := range result.Reforms {
		ev := &result.Reforms[i]
		evJSON, err := json.Marshal(ev)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal reform event")
		}
		reformRows = append(reformRows, []any{
			runID, ev.Unit, ev.Year, string(ev.ReformType), ev.ReformName,
			ev.StatewideFirst, ev.AdoptionRank, evJSON,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "novel_reforms",
		[]string{"run_id", "unit", "year", "reform_type", "reform_name", "statewide_first", "adoption_rank", "event"},
		reformRows,
	); err != nil {
		return err
	}

	summaryRows := make([][]any, 0, len(result.Summaries))
	for i := range result.Summaries {
		sum := &result.Summaries[i]
		sumJSON, err := json.Marshal(sum)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal summary")
		}
		summaryRows = append(summaryRows, []any{runID, sum.Unit, sumJSON})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "unit_summaries",
		[]string{"run_id", "unit", "summary"},
		summaryRows,
	); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE detection_runs SET status = $1, records = $2, reforms = $3, updated_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), len(result.Disruptions), len(result.Reforms), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE detection_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.DetectionRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, params, status, records, reforms, created_at, updated_at FROM detection_runs WHERE id = $1`,
		runID,
	)

	r, err := scanPgRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("run not found: %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DetectionRun, error) {
	query := `SELECT id, params, status, records, reforms, created_at, updated_at FROM detection_runs WHERE 1=1`
	var args []any
	argNum := 1

	if filter.Status != "" {
		query += ` AND status = $1`
		args = append(args, string(filter.Status))
		argNum++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT $` + strconv.Itoa(argNum)
	args = append(args, limit)
	argNum++

	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.DetectionRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgRun(row pgx.Row) (*model.DetectionRun, error) {
	var r model.DetectionRun
	var paramsJSON []byte

	if err := row.Scan(&r.ID, &paramsJSON, &r.Status, &r.Records, &r.Reforms, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(paramsJSON, &r.Params); err != nil {
		return nil, eris.Wrap(err, "unmarshal params")
	}
	return &r, nil
}
