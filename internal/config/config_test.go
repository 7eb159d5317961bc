package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/reproject"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "ejatlas.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, reproject.CRSWGS84, cfg.Data.AreasCRS)
	assert.Equal(t, reproject.CRSConusLCC, cfg.Analysis.TargetCRS)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "grade", cfg.Data.GradeField)
	assert.Equal(t, "\t", cfg.Data.ObsDelimiter)
	assert.Equal(t, "ejatlas/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Fetch.RatePerSec, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
data:
  areas_path: data/ejscreen.shp
  indicator_fields: [pm25, ozone]
analysis:
  workers: 8
store:
  driver: postgres
  database_url: postgres://localhost/ejatlas
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/ejscreen.shp", cfg.Data.AreasPath)
	assert.Equal(t, []string{"pm25", "ozone"}, cfg.Data.IndicatorFields)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, reproject.CRSConusLCC, cfg.Analysis.TargetCRS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("EJATLAS_STORE_DRIVER", "sqlite")
	t.Setenv("EJATLAS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("EJATLAS_ANALYSIS_WORKERS", "16")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Analysis.Workers)
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "ejatlas.db"
	cfg.Data.AreasPath = "data/ejscreen.shp"
	cfg.Data.ZonesPath = "data/holc.geojson"
	cfg.Data.ObservationsPath = "data/gbif.csv"
	cfg.Analysis.TargetCRS = reproject.CRSConusLCC
	cfg.Analysis.Workers = 4
	cfg.Fetch.DataDir = "data"
	cfg.Fetch.RatePerSec = 2
	return cfg
}

func TestValidateAnalyze(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("analyze"))

	cfg.Data.AreasPath = ""
	cfg.Analysis.Workers = 0
	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.areas_path is required")
	assert.Contains(t, err.Error(), "analysis.workers must be between 1 and 64")
}

func TestValidatePostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/ejatlas"
	assert.NoError(t, cfg.Validate("runs"))
}

func TestValidateFetch(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("fetch"))

	cfg.Fetch.RatePerSec = 0
	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_per_sec")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
