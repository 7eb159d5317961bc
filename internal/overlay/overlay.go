// Package overlay performs spatial intersection joins between the grade
// zones and the other two collections.
//
// Join semantics are an intersects-based left join: every record of the left
// collection appears in the output at least once. A record intersecting N
// zones appears exactly N times, once per zone (one-to-many fan-out;
// downstream counts depend on it, so no single match is ever picked
// arbitrarily). A record intersecting no zone appears exactly once with
// GradeUngraded.
package overlay

import (
	"context"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"golang.org/x/sync/errgroup"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// Options configures a join.
type Options struct {
	// Workers is the number of goroutines scanning the left collection.
	// Values below 2 run the join sequentially. Workers partition the left
	// collection into disjoint contiguous chunks and results are merged by
	// concatenation; downstream aggregates are order-insensitive.
	Workers int
}

// zoneEntry adapts a GradeZone for rtree indexing. The embedded geometry
// promotes the geom.Geom methods the tree requires.
type zoneEntry struct {
	geom.Polygonal
	zone *model.GradeZone
}

// index builds an rtree over the zone polygons.
func index(zones model.ZoneCollection) (*rtree.Rtree, error) {
	tree := rtree.NewTree(25, 50)
	for i := range zones.Zones {
		z := &zones.Zones[i]
		if z.Geom == nil {
			return nil, &model.GeometryError{Dataset: "zones", Index: i, Detail: "nil geometry"}
		}
		tree.Insert(&zoneEntry{Polygonal: z.Geom, zone: z})
	}
	return tree, nil
}

// Areas joins the indicator areas against the grade zones. Two polygons
// intersect when their interiors overlap (intersection area > 0); shapes
// that merely share a boundary do not join.
func Areas(ctx context.Context, zones model.ZoneCollection, areas model.AreaCollection, opts Options) ([]model.JoinedRecord, error) {
	tree, err := index(zones)
	if err != nil {
		return nil, err
	}

	join := func(i int) ([]model.JoinedRecord, error) {
		r := &areas.Records[i]
		if r.Geom == nil {
			return nil, &model.GeometryError{Dataset: "areas", Index: i, Detail: "nil geometry"}
		}
		var out []model.JoinedRecord
		for _, hit := range tree.SearchIntersect(r.Geom.Bounds()) {
			z := hit.(*zoneEntry).zone
			isect := r.Geom.Intersection(z.Geom)
			if isect == nil || isect.Area() <= 0 {
				continue
			}
			out = append(out, model.JoinedRecord{Grade: z.Grade, Area: r, Fields: r.Indicators})
		}
		if len(out) == 0 {
			out = append(out, model.JoinedRecord{Grade: model.GradeUngraded, Area: r, Fields: r.Indicators})
		}
		return out, nil
	}

	return run(ctx, len(areas.Records), opts.Workers, join)
}

// Observations joins the observation points against the grade zones. A point
// on a zone edge counts as intersecting that zone.
func Observations(ctx context.Context, zones model.ZoneCollection, obs model.ObservationCollection, opts Options) ([]model.JoinedRecord, error) {
	tree, err := index(zones)
	if err != nil {
		return nil, err
	}

	join := func(i int) ([]model.JoinedRecord, error) {
		o := &obs.Points[i]
		var out []model.JoinedRecord
		for _, hit := range tree.SearchIntersect(o.Geom.Bounds()) {
			z := hit.(*zoneEntry).zone
			if o.Geom.Within(z.Geom) == geom.Outside {
				continue
			}
			out = append(out, model.JoinedRecord{Grade: z.Grade, Obs: o})
		}
		if len(out) == 0 {
			out = append(out, model.JoinedRecord{Grade: model.GradeUngraded, Obs: o})
		}
		return out, nil
	}

	return run(ctx, len(obs.Points), opts.Workers, join)
}

// run executes join for every index in [0, n), either sequentially or
// partitioned across workers, and concatenates the per-record results in
// input order.
func run(ctx context.Context, n, workers int, join func(int) ([]model.JoinedRecord, error)) ([]model.JoinedRecord, error) {
	if n == 0 {
		return nil, nil
	}

	perRecord := make([][]model.JoinedRecord, n)

	if workers < 2 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			recs, err := join(i)
			if err != nil {
				return nil, err
			}
			perRecord[i] = recs
		}
	} else {
		if workers > n {
			workers = n
		}
		g, gctx := errgroup.WithContext(ctx)
		chunk := (n + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, n)
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					recs, err := join(i)
					if err != nil {
						return err
					}
					perRecord[i] = recs
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var out []model.JoinedRecord
	for _, recs := range perRecord {
		out = append(out, recs...)
	}
	return out, nil
}
