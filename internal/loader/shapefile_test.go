package loader

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAreaShapefile writes a two-record polygon shapefile with jurisdiction
// keys and one indicator column.
func writeAreaShapefile(t *testing.T, path string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	err = w.SetFields([]shp.Field{
		shp.StringField("STATE_NAME", 30),
		shp.StringField("CNTY_NAME", 30),
		shp.StringField("PM25_PCTL", 10),
	})
	require.NoError(t, err)

	rings := [][][]shp.Point{
		{{{X: -122.66, Y: 45.50}, {X: -122.64, Y: 45.50}, {X: -122.64, Y: 45.52}, {X: -122.66, Y: 45.52}, {X: -122.66, Y: 45.50}}},
		{{{X: -122.62, Y: 45.50}, {X: -122.60, Y: 45.50}, {X: -122.60, Y: 45.52}, {X: -122.62, Y: 45.52}, {X: -122.62, Y: 45.50}}},
	}
	attrs := [][]string{
		{"Oregon", "Multnomah", "73.5"},
		{"Oregon", "Multnomah", ""},
	}

	for n := range rings {
		poly := shp.Polygon(*shp.NewPolyLine(rings[n]))
		w.Write(&poly)
		for col, v := range attrs[n] {
			require.NoError(t, w.WriteAttribute(n, col, v))
		}
	}
	w.Close()
}

func TestLoadAreas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockgroups.shp")
	writeAreaShapefile(t, path)

	col, err := LoadAreas(path, AreaFileConfig{
		CRS:             "+proj=longlat +datum=WGS84 +no_defs",
		StateField:      "STATE_NAME",
		CountyField:     "CNTY_NAME",
		IndicatorFields: []string{"PM25_PCTL"},
	})
	require.NoError(t, err)
	require.Len(t, col.Records, 2)

	first := col.Records[0]
	assert.Equal(t, "Oregon", first.State)
	assert.Equal(t, "Multnomah", first.County)
	require.True(t, first.Indicators["PM25_PCTL"].Valid)
	assert.InDelta(t, 73.5, first.Indicators["PM25_PCTL"].Float64, 1e-9)
	assert.Greater(t, first.Geom.Area(), 0.0)

	// Blank attribute parses as missing, not zero.
	assert.False(t, col.Records[1].Indicators["PM25_PCTL"].Valid)
}

func TestLoadAreasMissingFile(t *testing.T) {
	_, err := LoadAreas(filepath.Join(t.TempDir(), "nope.shp"), AreaFileConfig{})
	assert.Error(t, err)
}
