// Package present renders analysis results for people: terminal tables,
// XLSX workbooks, bar charts, and a YAML run manifest.
package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

const nullCell = "-"

var printer = message.NewPrinter(language.English)

// WriteSummaryTable writes one summary as an aligned table. Field columns
// appear in the given order; a missing mean renders as "-".
func WriteSummaryTable(out io.Writer, title string, fields []string, groups []model.GroupSummary) {
	_, _ = fmt.Fprintf(out, "%s\n", title)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"GRADE", "COUNT", "PERCENT"}
	for _, f := range fields {
		header = append(header, strings.ToUpper(f))
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))

	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(w, strings.Join(rule, "\t"))

	for _, g := range groups {
		cols := []string{
			string(g.Grade),
			printer.Sprintf("%d", g.Count),
			fmt.Sprintf("%.1f%%", g.Percent),
		}
		for _, f := range fields {
			cols = append(cols, formatMean(g.Means[f]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	_ = w.Flush()
}

// WriteRunsTable writes a tabular list of stored runs to out.
func WriteRunsTable(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATE\tCOUNTY\tYEAR\tAREAS\tOBS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t----\t-----\t---\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.State,
			r.County,
			r.Year,
			printer.Sprintf("%d", r.AreaCount),
			printer.Sprintf("%d", r.ObsCount),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatMean(v model.NullFloat) string {
	if !v.Valid {
		return nullCell
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
