// Package aggregate reduces joined records to per-grade summaries.
//
// The percentage denominator is the total number of joined records, used
// consistently for both analyses, so that group percentages always sum to
// 100 even under one-to-many join fan-out.
package aggregate

import (
	"sort"

	"github.com/greenbelt-labs/ejatlas/internal/model"
)

// accumulator collects the running state for one grade group.
type accumulator struct {
	count int
	sums  map[string]float64
	ns    map[string]int
	seen  int // first-encountered position, for ordering unknown grades
}

// Summarize groups records by grade and computes, per group, the record
// count, the count as a percentage of all joined records, and the mean of
// each named field. Missing field values are excluded from both the
// numerator and denominator of a mean; a group with no non-missing values
// for a field reports a null mean. An empty input yields an empty summary.
//
// Output order is deterministic: A, B, C, D, then any other grade in
// first-encountered order, then ungraded.
func Summarize(records []model.JoinedRecord, fields []string) []model.GroupSummary {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[model.Grade]*accumulator)
	for _, r := range records {
		acc, ok := groups[r.Grade]
		if !ok {
			acc = &accumulator{
				sums: make(map[string]float64, len(fields)),
				ns:   make(map[string]int, len(fields)),
				seen: len(groups),
			}
			groups[r.Grade] = acc
		}
		acc.count++
		for _, f := range fields {
			v, ok := r.Fields[f]
			if !ok || !v.Valid {
				continue
			}
			acc.sums[f] += v.Float64
			acc.ns[f]++
		}
	}

	total := len(records)
	out := make([]model.GroupSummary, 0, len(groups))
	for grade, acc := range groups {
		means := make(map[string]model.NullFloat, len(fields))
		for _, f := range fields {
			if n := acc.ns[f]; n > 0 {
				means[f] = model.Float(acc.sums[f] / float64(n))
			} else {
				means[f] = model.NullFloat{}
			}
		}
		out = append(out, model.GroupSummary{
			Grade:   grade,
			Count:   acc.count,
			Percent: float64(acc.count) / float64(total) * 100,
			Means:   means,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Grade.Rank(), out[j].Grade.Rank()
		if ri != rj {
			return ri < rj
		}
		return groups[out[i].Grade].seen < groups[out[j].Grade].seen
	})
	return out
}
