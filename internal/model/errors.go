package model

import "fmt"

// ProjectionError reports an unresolvable or out-of-domain coordinate
// transform. It is unrecoverable for the run.
type ProjectionError struct {
	Dataset string
	Detail  string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection error in dataset %q: %s", e.Dataset, e.Detail)
}

// GeometryError reports a malformed geometry that could not be repaired,
// encountered during validation or mid-join. Index is the position of the
// offending record within its collection, or -1 when not applicable.
type GeometryError struct {
	Dataset string
	Index   int
	Detail  string
}

func (e *GeometryError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("geometry error in dataset %q record %d: %s", e.Dataset, e.Index, e.Detail)
	}
	return fmt.Sprintf("geometry error in dataset %q: %s", e.Dataset, e.Detail)
}
