package reproject

// Common proj4 CRS strings. Source datasets ship in geographic WGS84; the
// analysis runs in a planar Lambert conformal conic over the continental US
// so that intersection areas are meaningful.
const (
	CRSWGS84    = "+proj=longlat +datum=WGS84 +no_defs"
	CRSConusLCC = "+proj=lcc +lat_1=33 +lat_2=45 +lat_0=40 +lon_0=-97 +x_0=0 +y_0=0 +a=6370997 +b=6370997 +to_meter=1"
)
