package present

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

func testGroups() []model.GroupSummary {
	return []model.GroupSummary{
		{
			Grade:   model.GradeA,
			Count:   1200,
			Percent: 40,
			Means:   map[string]model.NullFloat{"pm25": model.Float(7.25)},
		},
		{
			Grade:   model.GradeD,
			Count:   1800,
			Percent: 60,
			Means:   map[string]model.NullFloat{"pm25": {}},
		},
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, "Indicators by grade", []string{"pm25"}, testGroups())

	out := buf.String()
	assert.Contains(t, out, "Indicators by grade")
	assert.Contains(t, out, "GRADE")
	assert.Contains(t, out, "PM25")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "7.25")

	// D has no valid pm25 mean, shown as "-".
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "D") {
			assert.Contains(t, line, nullCell)
			assert.NotContains(t, line, "0.00")
		}
	}
}

func TestWriteRunsTable(t *testing.T) {
	var buf bytes.Buffer
	runs := []model.Run{
		{
			ID:        "0b5c9d3e-1111-2222-3333-444455556666",
			State:     "OR",
			County:    "Multnomah",
			Year:      2022,
			AreaCount: 10,
			ObsCount:  2500,
			CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		},
	}
	WriteRunsTable(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "0b5c9d3e")
	assert.NotContains(t, out, "444455556666")
	assert.Contains(t, out, "Multnomah")
	assert.Contains(t, out, "2,500")
	assert.Contains(t, out, "2026-03-14 12:00")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	obs := []model.GroupSummary{{Grade: model.GradeC, Count: 5, Percent: 100}}

	require.NoError(t, WriteWorkbook(path, []string{"pm25"}, testGroups(), obs))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	ind := f.Sheet["Indicators by grade"]
	require.NotNil(t, ind)
	require.Len(t, ind.Rows, 3)
	assert.Equal(t, "grade", ind.Rows[0].Cells[0].String())
	assert.Equal(t, "mean_pm25", ind.Rows[0].Cells[3].String())
	assert.Equal(t, "A", ind.Rows[1].Cells[0].String())

	// D's pm25 mean is missing and stays an empty cell.
	assert.Equal(t, "", ind.Rows[2].Cells[3].String())

	obsSheet := f.Sheet["Observations by grade"]
	require.NotNil(t, obsSheet)
	require.Len(t, obsSheet.Rows, 2)
	assert.Equal(t, "C", obsSheet.Rows[1].Cells[0].String())
}

func TestRenderCountChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCountChart(&buf, "Observations by grade", testGroups()))

	// PNG magic bytes.
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestRenderCountChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderCountChart(&buf, "empty", nil))
}

func TestRenderMeanChartSkipsMissing(t *testing.T) {
	groupsWithMeans := []model.GroupSummary{
		{Grade: model.GradeA, Means: map[string]model.NullFloat{"pm25": model.Float(7.25)}},
		{Grade: model.GradeD, Means: map[string]model.NullFloat{"pm25": model.Float(11.4)}},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderMeanChart(&buf, "pm25", groupsWithMeans))
	assert.Greater(t, buf.Len(), 0)

	// Only missing means left: nothing to draw.
	var empty bytes.Buffer
	groups := []model.GroupSummary{{Grade: model.GradeB, Means: map[string]model.NullFloat{"pm25": {}}}}
	assert.Error(t, RenderMeanChart(&empty, "pm25", groups))
}

func TestWriteManifest(t *testing.T) {
	var buf bytes.Buffer
	var m Manifest
	m.CreatedAt = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m.Inputs.Areas = "data/ejscreen.shp"
	m.Inputs.Zones = "data/holc.geojson"
	m.Inputs.Observations = "data/gbif.csv"
	m.Parameters.State = "OR"
	m.Parameters.County = "Multnomah"
	m.Parameters.Year = 2022
	m.Parameters.Fields = []string{"pm25", "ozone"}
	m.Parameters.TargetCRS = "+proj=longlat +datum=WGS84 +no_defs"
	m.Counts.AreaJoined = 42

	require.NoError(t, WriteManifest(&buf, m))

	var got Manifest
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Multnomah", got.Parameters.County)
	assert.Equal(t, []string{"pm25", "ozone"}, got.Parameters.Fields)
	assert.Equal(t, 42, got.Counts.AreaJoined)
	assert.Equal(t, "joined records", got.PercentBasis)
	assert.Contains(t, buf.String(), "percent_basis: joined records")
}
