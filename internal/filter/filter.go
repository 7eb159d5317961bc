// Package filter restricts collections to the jurisdiction and time window
// under study. Filters are pure and non-mutating; an empty result is a valid
// state that flows through the rest of the pipeline as zero-count summaries.
package filter

import "github.com/greenbelt-labs/ejatlas/internal/model"

// AreasByJurisdiction keeps records whose state and county keys equal the
// given values exactly. An empty state or county matches every record, so a
// caller can restrict on either key alone.
func AreasByJurisdiction(col model.AreaCollection, state, county string) model.AreaCollection {
	out := model.AreaCollection{CRS: col.CRS}
	for _, r := range col.Records {
		if state != "" && r.State != state {
			continue
		}
		if county != "" && r.County != county {
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// ObservationsByYear keeps observations whose year attribute equals year.
func ObservationsByYear(col model.ObservationCollection, year int) model.ObservationCollection {
	out := model.ObservationCollection{CRS: col.CRS}
	for _, o := range col.Points {
		if o.Year == year {
			out.Points = append(out.Points, o)
		}
	}
	return out
}
