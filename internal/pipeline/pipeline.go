// Package pipeline wires the analysis stages into the single forward pass
// described by the run parameters: reproject, filter, validate, overlay,
// aggregate. There is no retry and no branching; unrecoverable errors abort
// the run naming the dataset that failed, while empty intermediate states
// flow through to zero-row summaries.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/aggregate"
	"github.com/greenbelt-labs/ejatlas/internal/filter"
	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/overlay"
	"github.com/greenbelt-labs/ejatlas/internal/validate"

	"github.com/greenbelt-labs/ejatlas/internal/reproject"
)

// Params configures one analysis run.
type Params struct {
	TargetCRS string   // planar CRS the overlay runs in (proj4)
	State     string   // jurisdiction state key; empty matches all
	County    string   // jurisdiction county key; empty matches all
	Year      int      // observation year under study
	Fields    []string // indicator fields to average per grade
	Workers   int      // overlay parallelism; <2 runs sequentially
}

// Result holds everything a presenter or store needs from one run.
type Result struct {
	CRS validate.CRSReport

	AreasFiltered        int
	ObservationsFiltered int
	AreaJoined           int
	ObsJoined            int

	AreaSummary []model.GroupSummary
	ObsSummary  []model.GroupSummary
}

// Run executes the full analysis over already-loaded collections.
func Run(ctx context.Context, areas model.AreaCollection, zones model.ZoneCollection, obs model.ObservationCollection, p Params) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	// 1. Reproject every dataset to the common planar CRS.
	areas, err := reproject.Areas(areas, p.TargetCRS)
	if err != nil {
		return nil, err
	}
	zones, err = reproject.Zones(zones, p.TargetCRS)
	if err != nil {
		return nil, err
	}
	obs, err = reproject.Observations(obs, p.TargetCRS)
	if err != nil {
		return nil, err
	}
	log.Debug("reprojected datasets", zap.String("target_crs", p.TargetCRS))

	// 2. Restrict to the jurisdiction and year under study.
	areas = filter.AreasByJurisdiction(areas, p.State, p.County)
	obs = filter.ObservationsByYear(obs, p.Year)
	if len(areas.Records) == 0 {
		log.Warn("jurisdiction filter matched no areas",
			zap.String("state", p.State), zap.String("county", p.County))
	}
	if len(obs.Points) == 0 {
		log.Warn("year filter matched no observations", zap.Int("year", p.Year))
	}

	// 3. Repair geometry and report CRS consistency. The report is
	// informational after reprojection but preserved for the manifest.
	zones, err = validate.RepairZones(zones)
	if err != nil {
		return nil, err
	}
	areas, err = validate.RepairAreas(areas)
	if err != nil {
		return nil, err
	}
	crs := validate.CheckCRS(areas, zones, obs)
	if !crs.AllMatch {
		for _, pair := range crs.Pairs {
			if !pair.Match {
				log.Warn("CRS mismatch between datasets",
					zap.String("left", pair.Left), zap.String("right", pair.Right))
			}
		}
	}

	// 4. Overlay joins.
	opts := overlay.Options{Workers: p.Workers}
	areaJoined, err := overlay.Areas(ctx, zones, areas, opts)
	if err != nil {
		return nil, err
	}
	obsJoined, err := overlay.Observations(ctx, zones, obs, opts)
	if err != nil {
		return nil, err
	}
	log.Info("overlay joins complete",
		zap.Int("area_pairs", len(areaJoined)),
		zap.Int("observation_pairs", len(obsJoined)),
	)

	// 5. Grouped aggregation. Observation summaries have no numeric fields
	// to average; they reduce to counts and percentages.
	res := &Result{
		CRS:                  crs,
		AreasFiltered:        len(areas.Records),
		ObservationsFiltered: len(obs.Points),
		AreaJoined:           len(areaJoined),
		ObsJoined:            len(obsJoined),
		AreaSummary:          aggregate.Summarize(areaJoined, p.Fields),
		ObsSummary:           aggregate.Summarize(obsJoined, nil),
	}
	return res, nil
}
