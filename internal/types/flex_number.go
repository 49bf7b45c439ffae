package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat64 is a float64 that can be unmarshaled from a JSON number, a
// numeric JSON string, an empty string or null. Form fields posted by the UI
// arrive as strings as often as numbers.
type FlexFloat64 float64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexFloat64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	// Try unmarshaling as a number first
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat64(n)
		return nil
	}

	// Try unmarshaling as a string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("FlexFloat64: invalid number string %q: %w", s, err)
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("FlexFloat64: %q is not a finite number", s)
		}
		*f = FlexFloat64(val)
		return nil
	}

	return fmt.Errorf("FlexFloat64: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexFloat64) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 converts FlexFloat64 back to float64.
func (f FlexFloat64) Float64() float64 {
	return float64(f)
}

// FlexInt is an int that can be unmarshaled from a JSON number or a numeric
// JSON string.
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var v FlexFloat64
	if err := v.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("FlexInt: %w", err)
	}
	*f = FlexInt(v)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int converts FlexInt back to int.
func (f FlexInt) Int() int {
	return int(f)
}
