package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbelt-labs/ejatlas/internal/config"
	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/pipeline"
)

// restoreTestConfig swaps the package-level config for a minimal one and
// restores the original when the test finishes.
func restoreTestConfig(t *testing.T) {
	t.Helper()
	orig := cfg
	cfg = &config.Config{}
	cfg.Data.AreasPath = "data/ejscreen.shp"
	cfg.Data.ZonesPath = "data/holc.geojson"
	cfg.Data.ObservationsPath = "data/gbif.csv"
	t.Cleanup(func() { cfg = orig })
}

func TestHasValidMean(t *testing.T) {
	groups := []model.GroupSummary{
		{Grade: model.GradeA, Means: map[string]model.NullFloat{"pm25": model.Float(7.2)}},
		{Grade: model.GradeD, Means: map[string]model.NullFloat{"pm25": {}, "ozone": {}}},
	}

	assert.True(t, hasValidMean(groups, "pm25"))
	assert.False(t, hasValidMean(groups, "ozone"))
	assert.False(t, hasValidMean(groups, "unknown"))
	assert.False(t, hasValidMean(nil, "pm25"))
}

func TestObsDelimiter(t *testing.T) {
	assert.Equal(t, '\t', obsDelimiter("\t"))
	assert.Equal(t, ',', obsDelimiter(","))
	// First rune, not first byte, for multi-byte delimiters.
	assert.Equal(t, '§', obsDelimiter("§"))
	assert.Equal(t, rune(0), obsDelimiter(""))
}

func TestDestPath(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "http zip", url: "https://example.com/data/holc.zip", want: filepath.Join("data", "holc.zip")},
		{name: "ftp file", url: "ftp://mirror.epa.gov/EJSCREEN/ejscreen.csv", want: filepath.Join("data", "ejscreen.csv")},
		{name: "no file name", url: "https://example.com/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := destPath("data", tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportResults(t *testing.T) {
	restoreTestConfig(t)

	dir := t.TempDir()
	res := &pipeline.Result{
		AreaJoined: 2,
		ObsJoined:  3,
		AreaSummary: []model.GroupSummary{
			{Grade: model.GradeA, Count: 1, Percent: 50, Means: map[string]model.NullFloat{"pm25": model.Float(7.2)}},
			{Grade: model.GradeD, Count: 1, Percent: 50, Means: map[string]model.NullFloat{"pm25": model.Float(11.4)}},
		},
		ObsSummary: []model.GroupSummary{
			{Grade: model.GradeA, Count: 1, Percent: 33.3},
			{Grade: model.GradeD, Count: 2, Percent: 66.7},
		},
	}
	params := pipeline.Params{Year: 2022, Fields: []string{"pm25"}, TargetCRS: "+proj=longlat +datum=WGS84 +no_defs"}

	require.NoError(t, exportResults(dir, []string{"pm25"}, params, res))

	for _, name := range []string{"summaries.xlsx", "observations.png", "mean_pm25.png", "manifest.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s to be written", name)
	}
}

func TestExportResultsSkipsAllMissingFieldChart(t *testing.T) {
	restoreTestConfig(t)

	dir := t.TempDir()
	res := &pipeline.Result{
		AreaSummary: []model.GroupSummary{
			{Grade: model.GradeA, Count: 1, Percent: 50, Means: map[string]model.NullFloat{"ozone": {}}},
			{Grade: model.GradeB, Count: 1, Percent: 50, Means: map[string]model.NullFloat{"ozone": {}}},
		},
	}

	require.NoError(t, exportResults(dir, []string{"ozone"}, pipeline.Params{Year: 2022}, res))

	_, err := os.Stat(filepath.Join(dir, "mean_ozone.png"))
	assert.True(t, os.IsNotExist(err))
}
