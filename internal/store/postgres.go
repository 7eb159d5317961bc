package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// PgxPool is the subset of *pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool  PgxPool
	clock clockwork.Clock
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock injects a clock for deterministic timestamps.
func WithPostgresClock(c clockwork.Clock) PostgresOption {
	return func(s *PostgresStore) {
		s.clock = c
	}
}

// NewPostgres connects to databaseURL and returns a PostgresStore.
func NewPostgres(ctx context.Context, databaseURL string, opts ...PostgresOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgresWithPool(pool, opts...), nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool PgxPool, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{pool: pool, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	county     TEXT NOT NULL,
	year       INTEGER NOT NULL,
	area_count INTEGER NOT NULL,
	obs_count  INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summaries (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	analysis TEXT NOT NULL,
	position INTEGER NOT NULL,
	grade    TEXT NOT NULL,
	count    INTEGER NOT NULL,
	percent  DOUBLE PRECISION NOT NULL,
	means    JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_summaries_run_id ON run_summaries(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, areas, obs []model.GroupSummary) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = s.clock.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, state, county, year, area_count, obs_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.State, run.County, run.Year, run.AreaCount, run.ObsCount, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert run")
	}

	insert := func(analysis model.Analysis, groups []model.GroupSummary) error {
		for i, g := range groups {
			means, err := json.Marshal(g.Means)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal means")
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO run_summaries (id, run_id, analysis, position, grade, count, percent, means) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				uuid.New().String(), run.ID, string(analysis), i, string(g.Grade), g.Count, g.Percent, string(means),
			)
			if err != nil {
				return eris.Wrap(err, "postgres: insert summary")
			}
		}
		return nil
	}
	if err := insert(model.AnalysisIndicators, areas); err != nil {
		return err
	}
	if err := insert(model.AnalysisObservations, obs); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, state, county, year, area_count, obs_count, created_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.State, &r.County, &r.Year, &r.AreaCount, &r.ObsCount, &r.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, state, county, year, area_count, obs_count, created_at FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.State, &r.County, &r.Year, &r.AreaCount, &r.ObsCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) GetSummaries(ctx context.Context, runID string, analysis model.Analysis) ([]model.GroupSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT grade, count, percent, means FROM run_summaries WHERE run_id = $1 AND analysis = $2 ORDER BY position`,
		runID, string(analysis),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get summaries")
	}
	defer rows.Close()

	return scanSummaries(rows)
}
