// Package store persists completed runs and their group summaries so past
// analyses can be listed and re-exported. SQLite is the default backend;
// Postgres is available for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// Store is the persistence interface for analysis runs.
type Store interface {
	// SaveRun records a run and its two summary tables atomically.
	SaveRun(ctx context.Context, run *model.Run, areas, obs []model.GroupSummary) error
	// GetRun returns a run by id.
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	// GetSummaries returns the stored summaries of a run by analysis.
	GetSummaries(ctx context.Context, runID string, analysis model.Analysis) ([]model.GroupSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite database file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres connection string
}

// Open creates the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
