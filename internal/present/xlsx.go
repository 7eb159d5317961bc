package present

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// WriteWorkbook writes both summaries to an XLSX file, one sheet per
// analysis. Missing means are left as empty cells.
func WriteWorkbook(path string, fields []string, areas, obs []model.GroupSummary) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, "Indicators by grade", fields, areas); err != nil {
		return err
	}
	if err := addSummarySheet(f, "Observations by grade", nil, obs); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func addSummarySheet(f *xlsx.File, name string, fields []string, groups []model.GroupSummary) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", name)
	}

	header := sheet.AddRow()
	header.AddCell().SetString("grade")
	header.AddCell().SetString("count")
	header.AddCell().SetString("percent")
	for _, field := range fields {
		header.AddCell().SetString("mean_" + field)
	}

	for _, g := range groups {
		row := sheet.AddRow()
		row.AddCell().SetString(string(g.Grade))
		row.AddCell().SetInt(g.Count)
		row.AddCell().SetFloatWithFormat(g.Percent, "0.0")
		for _, field := range fields {
			cell := row.AddCell()
			if v := g.Means[field]; v.Valid {
				cell.SetFloatWithFormat(v.Float64, "0.00")
			}
		}
	}
	return nil
}
