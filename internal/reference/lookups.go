package reference

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// lookupColumns maps public lookup names to the catalog column they read.
//
//nolint:gochecknoglobals // Static name table.
var lookupColumns = map[string]string{
	"region":                "Region",
	"mode_of_transport":     "Mode of Transport",
	"type_of_activity_data": "Type of Activity Data",
	"scope":                 "Scope",
	"units":                 "Units",
	"ipcc_gwp_version":      "IPCC GWP Version",
	"activity_data_columns": "Activity Data Columns",
	"unit_of_fuel_amount":   "Unit of Fuel Amount",
}

// LookupNames returns the supported lookup names, sorted.
func LookupNames() []string {
	names := make([]string, 0, len(lookupColumns))
	for n := range lookupColumns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookups is the catalog of allowed values for categorical activity fields
// such as region, scope, and fuel unit. Each column is independent: a row may
// populate some columns and leave others blank.
type Lookups struct {
	rows []map[string]string
}

// NewLookups builds a catalog from column to values.
func NewLookups(columns map[string][]string) *Lookups {
	l := &Lookups{}
	for col, values := range columns {
		for _, v := range values {
			l.rows = append(l.rows, map[string]string{strings.TrimSpace(col): v})
		}
	}
	return l
}

// ParseLookups reads the lookups catalog CSV.
func ParseLookups(r io.Reader) (*Lookups, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, fmt.Errorf("lookups: %w", err)
	}
	l := &Lookups{rows: make([]map[string]string, 0, len(s.records))}
	for _, rec := range s.records {
		l.rows = append(l.rows, s.fields(rec))
	}
	return l, nil
}

func resolveLookup(name string) (string, error) {
	col, ok := lookupColumns[normalize(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLookup, name)
	}
	return col, nil
}

// Values returns the distinct non-blank values of the named lookup, sorted.
func (l *Lookups) Values(name string) ([]string, error) {
	col, err := resolveLookup(name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, nil
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, row := range l.rows {
		v := strings.TrimSpace(row[col])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Matching returns the catalog rows whose named lookup equals value, ignoring
// case and surrounding whitespace.
func (l *Lookups) Matching(name, value string) ([]map[string]string, error) {
	col, err := resolveLookup(name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, nil
	}
	want := normalize(value)
	var out []map[string]string
	for _, row := range l.rows {
		if normalize(row[col]) == want && want != "" {
			out = append(out, row)
		}
	}
	return out, nil
}

// Suppliers is the list of known supplier and container labels.
type Suppliers []string

// ParseSuppliers reads a single-column supplier list; the first row is a
// header. Surrounding quotes and whitespace are removed.
func ParseSuppliers(r io.Reader) (Suppliers, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, fmt.Errorf("supplier_list: %w", err)
	}
	out := Suppliers{}
	for _, rec := range s.records {
		v := strings.TrimSpace(strings.Trim(cell(rec, 0), `"`))
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
