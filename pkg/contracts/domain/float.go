package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Float is a nullable float64. A sensor cell that fails numeric coercion
// becomes an invalid Float rather than a zero, so aggregation can exclude it.
type Float struct {
	Value float64
	Valid bool
}

// FloatFrom returns a valid Float holding v.
func FloatFrom(v float64) Float {
	return Float{Value: v, Valid: true}
}

// ParseFloat coerces a raw cell value into a Float. Whitespace is trimmed and
// thousands separators are removed before parsing. Empty or unparseable cells
// yield an invalid Float, never an error.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return Float{}
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float{}
	}
	return FloatFrom(v)
}

// Float64 returns the value, or 0 when invalid.
func (f Float) Float64() float64 {
	if !f.Valid {
		return 0
	}
	return f.Value
}

// String renders the value with minimal digits, or an empty string when invalid.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// MarshalJSON renders invalid Floats as JSON null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a JSON number or null.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FloatFrom(v)
	return nil
}
