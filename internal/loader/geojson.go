package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/reproject"
)

// ZoneFileConfig describes how to read a grade-zone GeoJSON file. GeoJSON
// coordinates are always geographic WGS84 (RFC 7946), so no CRS option.
type ZoneFileConfig struct {
	GradeField string // property carrying the HOLC grade; default "grade"
	NameField  string // property carrying the neighborhood label; default "label"
}

// LoadZones reads a grade-zone GeoJSON FeatureCollection into a
// ZoneCollection. Features with a missing or empty grade property become
// ungraded zones; they are kept, not dropped.
func LoadZones(path string, cfg ZoneFileConfig) (model.ZoneCollection, error) {
	if cfg.GradeField == "" {
		cfg.GradeField = "grade"
	}
	if cfg.NameField == "" {
		cfg.NameField = "label"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.ZoneCollection{}, eris.Wrapf(err, "loader: read geojson %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return model.ZoneCollection{}, eris.Wrapf(err, "loader: parse geojson %s", path)
	}

	col := model.ZoneCollection{CRS: reproject.CRSWGS84}
	var skipped int
	for _, f := range fc.Features {
		g := polygonalFromGeoJSON(f.Geometry)
		if g == nil {
			skipped++
			continue
		}
		col.Zones = append(col.Zones, model.GradeZone{
			Geom:  g,
			Grade: model.NormalizeGrade(stringProp(f.Properties, cfg.GradeField)),
			Name:  stringProp(f.Properties, cfg.NameField),
		})
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped geojson features without polygon geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return col, nil
}

func stringProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// polygonalFromGeoJSON converts a decoded go-geom polygon or multipolygon
// into the ctessum/geom representation the overlay operates on.
func polygonalFromGeoJSON(g gogeom.T) geom.Polygonal {
	switch t := g.(type) {
	case *gogeom.Polygon:
		p := polygonFromRings(t)
		if len(p) == 0 {
			return nil
		}
		return p
	case *gogeom.MultiPolygon:
		out := make(geom.MultiPolygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			if p := polygonFromRings(t.Polygon(i)); len(p) > 0 {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

func polygonFromRings(p *gogeom.Polygon) geom.Polygon {
	if p == nil || p.NumLinearRings() == 0 {
		return nil
	}
	out := make(geom.Polygon, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		if len(coords) == 0 {
			continue
		}
		ring := make([]geom.Point, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, geom.Point{X: c.X(), Y: c.Y()})
		}
		out = append(out, ring)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
