package loader

import (
	"strings"

	"github.com/ctessum/geom"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// AreaFileConfig describes how to read an indicator shapefile: which
// attribute columns carry the jurisdiction keys and which carry numeric
// indicators, plus the CRS its coordinates are expressed in.
type AreaFileConfig struct {
	CRS             string
	StateField      string
	CountyField     string
	IndicatorFields []string
}

// LoadAreas reads an indicator shapefile into an AreaCollection. Records
// with no usable polygon geometry are skipped and counted; attribute values
// that do not parse as numbers become missing indicators.
func LoadAreas(path string, cfg AreaFileConfig) (model.AreaCollection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return model.AreaCollection{}, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Field name -> index, case-insensitive like DBF headers in the wild.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(name string) string {
		idx, ok := fieldIdx[strings.ToLower(name)]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	col := model.AreaCollection{CRS: cfg.CRS}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		g := polygonFromShp(poly)
		if g == nil {
			skipped++
			continue
		}

		rec := model.AreaRecord{
			Geom:       g,
			State:      attr(cfg.StateField),
			County:     attr(cfg.CountyField),
			Indicators: make(map[string]model.NullFloat, len(cfg.IndicatorFields)),
		}
		for _, f := range cfg.IndicatorFields {
			rec.Indicators[f] = parseIndicator(attr(f))
		}
		col.Records = append(col.Records, rec)
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records without polygon geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return col, nil
}

// polygonFromShp converts a shapefile polygon, part by part, into a
// ctessum/geom polygon. Shapefile parts are rings; holes stay rings of the
// same polygon, matching how the overlay's clipping treats them.
func polygonFromShp(p *shp.Polygon) geom.Polygonal {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	out := make(geom.Polygon, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end <= start {
			continue
		}
		ring := make([]geom.Point, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Point{X: p.Points[j].X, Y: p.Points[j].Y})
		}
		out = append(out, ring)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
