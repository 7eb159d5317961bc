package model

// JoinedRecord is one output row of a spatial intersection join. Exactly one
// of Area or Obs is set depending on which collection was joined against the
// grade zones. Fields carries the numeric attributes the aggregator may
// average; it aliases the source record's indicator map and must not be
// mutated.
type JoinedRecord struct {
	Grade  Grade
	Area   *AreaRecord
	Obs    *Observation
	Fields map[string]NullFloat
}

// GroupSummary is one output row of the aggregator: the records of a single
// grade reduced to a count, a share of the joined total, and per-field
// means. A mean is null when the group has no non-missing value for that
// field.
type GroupSummary struct {
	Grade   Grade
	Count   int
	Percent float64
	Means   map[string]NullFloat
}
