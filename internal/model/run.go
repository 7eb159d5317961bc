package model

import "time"

// Run records one completed analysis: the jurisdiction and year it covered
// and the joined totals its summaries were computed over.
type Run struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	County    string    `json:"county"`
	Year      int       `json:"year"`
	AreaCount int       `json:"area_count"`
	ObsCount  int       `json:"obs_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Analysis names which of the two joins a stored summary belongs to.
type Analysis string

const (
	AnalysisIndicators   Analysis = "indicators"
	AnalysisObservations Analysis = "observations"
)
