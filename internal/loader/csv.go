package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/reproject"
)

// ObservationFileConfig describes a GBIF-style occurrence export. Column
// names follow the Darwin Core terms GBIF uses; coordinates are geographic
// WGS84. GBIF ships tab-separated files, so the delimiter is configurable.
type ObservationFileConfig struct {
	Delimiter      rune   // default ','
	LongitudeField string // default "decimalLongitude"
	LatitudeField  string // default "decimalLatitude"
	YearField      string // default "year"
	TaxonField     string // default "species"
	CommonField    string // default "vernacularName"
}

func (c *ObservationFileConfig) defaults() {
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	if c.LongitudeField == "" {
		c.LongitudeField = "decimalLongitude"
	}
	if c.LatitudeField == "" {
		c.LatitudeField = "decimalLatitude"
	}
	if c.YearField == "" {
		c.YearField = "year"
	}
	if c.TaxonField == "" {
		c.TaxonField = "species"
	}
	if c.CommonField == "" {
		c.CommonField = "vernacularName"
	}
}

// LoadObservations reads an occurrence CSV into an ObservationCollection.
// Rows without usable coordinates or a year are skipped and counted; they
// carry no position to join on.
func LoadObservations(path string, cfg ObservationFileConfig) (model.ObservationCollection, error) {
	cfg.defaults()

	f, err := os.Open(path)
	if err != nil {
		return model.ObservationCollection{}, eris.Wrapf(err, "loader: open observations %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = cfg.Delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return model.ObservationCollection{}, eris.Wrapf(err, "loader: read observations header %s", path)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{cfg.LongitudeField, cfg.LatitudeField, cfg.YearField} {
		if _, ok := colIdx[required]; !ok {
			return model.ObservationCollection{}, eris.Errorf("loader: observations file %s missing column %q", path, required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	col := model.ObservationCollection{CRS: reproject.CRSWGS84}
	var skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.ObservationCollection{}, eris.Wrapf(err, "loader: read observations row %s", path)
		}

		lng, errLng := strconv.ParseFloat(field(row, cfg.LongitudeField), 64)
		lat, errLat := strconv.ParseFloat(field(row, cfg.LatitudeField), 64)
		year, errYear := strconv.Atoi(field(row, cfg.YearField))
		if errLng != nil || errLat != nil || errYear != nil {
			skipped++
			continue
		}

		col.Points = append(col.Points, model.Observation{
			Geom:       geom.Point{X: lng, Y: lat},
			Year:       year,
			Taxon:      field(row, cfg.TaxonField),
			CommonName: field(row, cfg.CommonField),
		})
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped observation rows without coordinates or year",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return col, nil
}
