package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a loosely typed input cell. Spreadsheet exports send numbers as
// JSON numbers, strings with thousands separators, or empty strings; Value
// keeps the text and defers interpretation to Float and Int.
type Value string

// UnmarshalJSON accepts strings, numbers, booleans, and null.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*v = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = Value(str)
	case s == "true" || s == "false":
		*v = Value(s)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("unsupported cell value %s", s)
		}
		*v = Value(s)
	}
	return nil
}

// String returns the trimmed text.
func (v Value) String() string { return strings.TrimSpace(string(v)) }

// Empty reports whether the cell is blank.
func (v Value) Empty() bool { return v.String() == "" }

// Float parses the cell as a number. A blank cell returns (nil, nil).
func (v Value) Float() (*float64, error) {
	s := strings.ReplaceAll(v.String(), ",", "")
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, v.String())
	}
	return &f, nil
}

// Int parses the cell as a whole number. Values such as "12.0" are
// accepted; fractional values are not.
func (v Value) Int() (*int, error) {
	f, err := v.Float()
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	if float64(n) != *f {
		return nil, fmt.Errorf("%w: %q is not a whole number", ErrInvalidNumber, v.String())
	}
	return &n, nil
}
