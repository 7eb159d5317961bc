package model

import (
	"github.com/ctessum/geom"
)

// AreaRecord is one areal unit (a census block group) carrying numeric
// indicator fields. Records are immutable once loaded; pipeline stages that
// change geometry return new collections.
type AreaRecord struct {
	Geom       geom.Polygonal
	State      string
	County     string
	Indicators map[string]NullFloat
}

// GradeZone is a redlining neighborhood polygon with its HOLC grade.
type GradeZone struct {
	Geom  geom.Polygonal
	Grade Grade
	Name  string
}

// Observation is a single biodiversity observation point.
type Observation struct {
	Geom       geom.Point
	Year       int
	Taxon      string
	CommonName string
}

// AreaCollection holds indicator areas together with the proj4 string of
// the coordinate reference system their geometries are expressed in.
type AreaCollection struct {
	CRS     string
	Records []AreaRecord
}

// ZoneCollection holds grade zones and their CRS.
type ZoneCollection struct {
	CRS   string
	Zones []GradeZone
}

// ObservationCollection holds observation points and their CRS.
type ObservationCollection struct {
	CRS    string
	Points []Observation
}
