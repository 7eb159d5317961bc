// Package loader reads the three source datasets into typed geometry
// collections: indicator block groups from a shapefile, grade zones from
// GeoJSON, and biodiversity observations from CSV.
package loader

import (
	"strconv"
	"strings"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// missingSentinels are attribute values that mean "no measurement" in the
// indicator tables, on top of the empty string.
var missingSentinels = map[string]bool{
	"n/a":  true,
	"na":   true,
	"null": true,
	"none": true,
	"-":    true,
}

// parseIndicator converts a raw attribute string to an optional numeric.
// Blank and sentinel values are missing, never zero.
func parseIndicator(raw string) model.NullFloat {
	s := strings.TrimSpace(raw)
	if s == "" || missingSentinels[strings.ToLower(s)] {
		return model.NullFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.NullFloat{}
	}
	return model.FloatOrNull(v)
}
