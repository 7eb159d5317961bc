// Package model defines the data types shared by the analysis pipeline:
// redlining grade zones, indicator areas, biodiversity observations, and
// the joined/aggregated records derived from them.
package model

import "strings"

// Grade is a HOLC redlining grade used as the grouping key throughout the
// analysis. The historical alphabet is A through D; GradeUngraded groups
// zones with no recorded grade as well as joined records whose location
// intersects no zone at all.
type Grade string

const (
	GradeA        Grade = "A"
	GradeB        Grade = "B"
	GradeC        Grade = "C"
	GradeD        Grade = "D"
	GradeUngraded Grade = "ungraded"
)

// gradeOrder is the declared presentation order for the historical alphabet.
var gradeOrder = map[Grade]int{
	GradeA: 0,
	GradeB: 1,
	GradeC: 2,
	GradeD: 3,
}

// Rank returns the presentation rank of a grade. Known grades come first in
// A-D order, ungraded always sorts last, and any other value lands between
// the two so callers can break ties by first-encountered order.
func (g Grade) Rank() int {
	if r, ok := gradeOrder[g]; ok {
		return r
	}
	if g == GradeUngraded {
		return len(gradeOrder) + 1
	}
	return len(gradeOrder)
}

// NormalizeGrade maps a raw grade attribute to a Grade. Empty or
// whitespace-only values mean the zone was never graded.
func NormalizeGrade(raw string) Grade {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GradeUngraded
	}
	return Grade(raw)
}
