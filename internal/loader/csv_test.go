package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const observationsCSV = `gbifID,species,vernacularName,decimalLatitude,decimalLongitude,year
1001,Ardea herodias,Great Blue Heron,45.51,-122.66,2022
1002,Sciurus griseus,Western Gray Squirrel,45.49,-122.63,2021
1003,Corvus brachyrhynchos,American Crow,,,2022
1004,Turdus migratorius,American Robin,45.52,-122.61,2022
`

func TestLoadObservations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occurrences.csv")
	require.NoError(t, os.WriteFile(path, []byte(observationsCSV), 0o644))

	col, err := LoadObservations(path, ObservationFileConfig{})
	require.NoError(t, err)

	// The row without coordinates is skipped.
	require.Len(t, col.Points, 3)

	first := col.Points[0]
	assert.Equal(t, -122.66, first.Geom.X)
	assert.Equal(t, 45.51, first.Geom.Y)
	assert.Equal(t, 2022, first.Year)
	assert.Equal(t, "Ardea herodias", first.Taxon)
	assert.Equal(t, "Great Blue Heron", first.CommonName)
}

func TestLoadObservationsTabDelimited(t *testing.T) {
	content := "species\tdecimalLatitude\tdecimalLongitude\tyear\n" +
		"Junco hyemalis\t45.50\t-122.65\t2021\n"
	path := filepath.Join(t.TempDir(), "occurrences.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	col, err := LoadObservations(path, ObservationFileConfig{Delimiter: '\t'})
	require.NoError(t, err)
	require.Len(t, col.Points, 1)
	assert.Equal(t, "Junco hyemalis", col.Points[0].Taxon)
}

func TestLoadObservationsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occurrences.csv")
	require.NoError(t, os.WriteFile(path, []byte("species,year\nx,2020\n"), 0o644))

	_, err := LoadObservations(path, ObservationFileConfig{})
	assert.Error(t, err)
}

func TestParseIndicator(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
		value float64
	}{
		{name: "plain number", raw: "73.5", valid: true, value: 73.5},
		{name: "zero is a value", raw: "0", valid: true, value: 0},
		{name: "blank is missing", raw: "", valid: false},
		{name: "whitespace is missing", raw: "   ", valid: false},
		{name: "sentinel N/A", raw: "N/A", valid: false},
		{name: "garbage is missing", raw: "abc", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseIndicator(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.value, got.Float64)
			}
		})
	}
}
