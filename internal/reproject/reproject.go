// Package reproject normalizes geometry collections to a common planar
// coordinate reference system. Every dataset must pass through here before
// any cross-dataset spatial predicate runs; a CRS mismatch between join
// operands is the most consequential correctness hazard in this analysis.
package reproject

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// transformer builds a coordinate transform from srcCRS to dstCRS, both
// given as proj4 strings. dataset names the collection for error reporting.
func transformer(srcCRS, dstCRS, dataset string) (proj.Transformer, error) {
	src, err := proj.Parse(srcCRS)
	if err != nil {
		return nil, &model.ProjectionError{Dataset: dataset, Detail: "parse source CRS " + srcCRS + ": " + err.Error()}
	}
	dst, err := proj.Parse(dstCRS)
	if err != nil {
		return nil, &model.ProjectionError{Dataset: dataset, Detail: "parse target CRS " + dstCRS + ": " + err.Error()}
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, &model.ProjectionError{Dataset: dataset, Detail: "build transform: " + err.Error()}
	}
	return t, nil
}

func polygonal(g geom.Polygonal, t proj.Transformer, dataset string) (geom.Polygonal, error) {
	if g == nil {
		return nil, nil
	}
	gg, err := g.Transform(t)
	if err != nil {
		return nil, &model.ProjectionError{Dataset: dataset, Detail: "transform polygon: " + err.Error()}
	}
	p, ok := gg.(geom.Polygonal)
	if !ok {
		return nil, &model.ProjectionError{Dataset: dataset, Detail: "transform produced non-polygonal geometry"}
	}
	return p, nil
}

// Areas returns a copy of col with every geometry expressed in targetCRS.
// The input collection is not modified. When col is already in targetCRS the
// input is returned unchanged.
func Areas(col model.AreaCollection, targetCRS string) (model.AreaCollection, error) {
	if col.CRS == targetCRS {
		return col, nil
	}
	t, err := transformer(col.CRS, targetCRS, "areas")
	if err != nil {
		return model.AreaCollection{}, err
	}
	out := model.AreaCollection{CRS: targetCRS, Records: make([]model.AreaRecord, len(col.Records))}
	for i, r := range col.Records {
		g, err := polygonal(r.Geom, t, "areas")
		if err != nil {
			return model.AreaCollection{}, err
		}
		r.Geom = g
		out.Records[i] = r
	}
	return out, nil
}

// Zones returns a copy of col with every geometry expressed in targetCRS.
func Zones(col model.ZoneCollection, targetCRS string) (model.ZoneCollection, error) {
	if col.CRS == targetCRS {
		return col, nil
	}
	t, err := transformer(col.CRS, targetCRS, "zones")
	if err != nil {
		return model.ZoneCollection{}, err
	}
	out := model.ZoneCollection{CRS: targetCRS, Zones: make([]model.GradeZone, len(col.Zones))}
	for i, z := range col.Zones {
		g, err := polygonal(z.Geom, t, "zones")
		if err != nil {
			return model.ZoneCollection{}, err
		}
		z.Geom = g
		out.Zones[i] = z
	}
	return out, nil
}

// Observations returns a copy of col with every point expressed in targetCRS.
func Observations(col model.ObservationCollection, targetCRS string) (model.ObservationCollection, error) {
	if col.CRS == targetCRS {
		return col, nil
	}
	t, err := transformer(col.CRS, targetCRS, "observations")
	if err != nil {
		return model.ObservationCollection{}, err
	}
	out := model.ObservationCollection{CRS: targetCRS, Points: make([]model.Observation, len(col.Points))}
	for i, o := range col.Points {
		gg, err := o.Geom.Transform(t)
		if err != nil {
			return model.ObservationCollection{}, &model.ProjectionError{Dataset: "observations", Detail: "transform point: " + err.Error()}
		}
		p, ok := gg.(geom.Point)
		if !ok {
			return model.ObservationCollection{}, &model.ProjectionError{Dataset: "observations", Detail: "transform produced non-point geometry"}
		}
		o.Geom = p
		out.Points[i] = o
	}
	return out, nil
}
