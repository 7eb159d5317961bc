package model

import (
	"encoding/json"
	"math"
)

// NullFloat is an explicitly optional float64. Indicator fields distinguish
// "missing" from zero, so the zero value (invalid) means the measurement is
// absent, never that it is 0.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat holding v.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// FloatOrNull treats NaN and infinities as missing, which is how numeric
// sentinels arrive from attribute tables.
func FloatOrNull(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return Float(v)
}

// MarshalJSON encodes invalid values as JSON null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes JSON null as an invalid value.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
