package present

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// RenderCountChart renders a PNG bar chart of record counts per grade.
func RenderCountChart(w io.Writer, title string, groups []model.GroupSummary) error {
	bars := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		bars = append(bars, chart.Value{
			Label: string(g.Grade),
			Value: float64(g.Count),
		})
	}
	return render(w, title, bars)
}

// RenderMeanChart renders a PNG bar chart of one field's mean per grade.
// Grades where the mean is missing are omitted.
func RenderMeanChart(w io.Writer, field string, groups []model.GroupSummary) error {
	bars := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		v, ok := g.Means[field]
		if !ok || !v.Valid {
			continue
		}
		bars = append(bars, chart.Value{
			Label: string(g.Grade),
			Value: v.Float64,
		})
	}
	return render(w, fmt.Sprintf("Mean %s by grade", field), bars)
}

func render(w io.Writer, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		return eris.Errorf("chart: no bars to render for %q", title)
	}

	graph := chart.BarChart{
		Title:    title,
		Height:   512,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	return eris.Wrapf(graph.Render(chart.PNG, w), "chart: render %q", title)
}
