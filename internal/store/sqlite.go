package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock injects a clock, used by tests for deterministic timestamps.
func WithSQLiteClock(c clockwork.Clock) SQLiteOption {
	return func(s *SQLiteStore) {
		s.clock = c
	}
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	s := &SQLiteStore{db: db, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	county     TEXT NOT NULL,
	year       INTEGER NOT NULL,
	area_count INTEGER NOT NULL,
	obs_count  INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summaries (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	analysis TEXT NOT NULL,
	position INTEGER NOT NULL,
	grade    TEXT NOT NULL,
	count    INTEGER NOT NULL,
	percent  REAL NOT NULL,
	means    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_summaries_run_id ON run_summaries(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, areas, obs []model.GroupSummary) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = s.clock.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, state, county, year, area_count, obs_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.State, run.County, run.Year, run.AreaCount, run.ObsCount, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	insert := func(analysis model.Analysis, groups []model.GroupSummary) error {
		for i, g := range groups {
			means, err := json.Marshal(g.Means)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal means")
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO run_summaries (id, run_id, analysis, position, grade, count, percent, means) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), run.ID, string(analysis), i, string(g.Grade), g.Count, g.Percent, string(means),
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert summary")
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

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, state, county, year, area_count, obs_count, created_at FROM runs WHERE id = ?`,
		runID,
	).Scan(&r.ID, &r.State, &r.County, &r.Year, &r.AreaCount, &r.ObsCount, &r.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state, county, year, area_count, obs_count, created_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.State, &r.County, &r.Year, &r.AreaCount, &r.ObsCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) GetSummaries(ctx context.Context, runID string, analysis model.Analysis) ([]model.GroupSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grade, count, percent, means FROM run_summaries WHERE run_id = ? AND analysis = ? ORDER BY position`,
		runID, string(analysis),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get summaries")
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// summaryRows abstracts sql.Rows and pgx.Rows for shared scanning.
type summaryRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSummaries(rows summaryRows) ([]model.GroupSummary, error) {
	var out []model.GroupSummary
	for rows.Next() {
		var (
			g       model.GroupSummary
			grade   string
			meansJS string
		)
		if err := rows.Scan(&grade, &g.Count, &g.Percent, &meansJS); err != nil {
			return nil, eris.Wrap(err, "store: scan summary")
		}
		g.Grade = model.Grade(grade)
		if err := json.Unmarshal([]byte(meansJS), &g.Means); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal means")
		}
		out = append(out, g)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate summaries")
}
