// Package validate repairs degenerate polygon geometry and confirms that the
// three datasets share one coordinate reference system before any join runs.
package validate

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// PairMatch is one pairwise CRS comparison between two datasets.
type PairMatch struct {
	Left  string
	Right string
	Match bool
}

// CRSReport describes CRS consistency across the three input datasets.
// AllMatch collapses the three pairwise comparisons into a single outcome;
// when it is false, Pairs reports each comparison independently so a caller
// can decide whether to proceed. This is a report, not a gate.
type CRSReport struct {
	AllMatch bool
	Pairs    []PairMatch
}

// CheckCRS compares the CRS of the three collections. CRS identity is exact
// equality of the normalized proj4 strings the collections carry.
func CheckCRS(areas model.AreaCollection, zones model.ZoneCollection, obs model.ObservationCollection) CRSReport {
	pairs := []PairMatch{
		{Left: "areas", Right: "zones", Match: areas.CRS == zones.CRS},
		{Left: "areas", Right: "observations", Match: areas.CRS == obs.CRS},
		{Left: "zones", Right: "observations", Match: zones.CRS == obs.CRS},
	}
	all := true
	for _, p := range pairs {
		all = all && p.Match
	}
	return CRSReport{AllMatch: all, Pairs: pairs}
}

// repairPolygonal applies the canonical validity repair: a union of the
// polygon with itself, which resolves self-intersections and ring
// orientation while preserving the covered area. A repair that would remove
// the polygon entirely is an error, never a silent drop.
func repairPolygonal(g geom.Polygonal, dataset string, idx int) (geom.Polygonal, error) {
	if g == nil {
		return nil, &model.GeometryError{Dataset: dataset, Index: idx, Detail: "nil geometry"}
	}
	if !finite(g) {
		return nil, &model.GeometryError{Dataset: dataset, Index: idx, Detail: "non-finite coordinate"}
	}
	fixed := g.Union(g)
	if fixed == nil || len(fixed.Polygons()) == 0 || fixed.Area() == 0 {
		return nil, &model.GeometryError{Dataset: dataset, Index: idx, Detail: "repair produced an empty polygon"}
	}
	return fixed, nil
}

func finite(g geom.Polygonal) bool {
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			for _, pt := range ring {
				if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
					return false
				}
			}
		}
	}
	return true
}

// RepairAreas returns a copy of col with every polygon repaired.
func RepairAreas(col model.AreaCollection) (model.AreaCollection, error) {
	out := model.AreaCollection{CRS: col.CRS, Records: make([]model.AreaRecord, len(col.Records))}
	for i, r := range col.Records {
		g, err := repairPolygonal(r.Geom, "areas", i)
		if err != nil {
			return model.AreaCollection{}, err
		}
		r.Geom = g
		out.Records[i] = r
	}
	return out, nil
}

// RepairZones returns a copy of col with every polygon repaired.
func RepairZones(col model.ZoneCollection) (model.ZoneCollection, error) {
	out := model.ZoneCollection{CRS: col.CRS, Zones: make([]model.GradeZone, len(col.Zones))}
	for i, z := range col.Zones {
		g, err := repairPolygonal(z.Geom, "zones", i)
		if err != nil {
			return model.ZoneCollection{}, err
		}
		z.Geom = g
		out.Zones[i] = z
	}
	return out, nil
}
