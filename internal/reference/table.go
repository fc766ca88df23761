package reference

import (
	"fmt"
	"io"
	"maps"
	"sort"
)

// Default column names shared by the factor tables.
const (
	RegionColumn = "Region"
	ModeColumn   = "Mode of Transport"
)

// Key columns of the shipped factor tables.
const (
	FuelCO2KeyColumn = "Fuel"
	FuelCH4KeyColumn = "Transport and Fuel"
	VehicleKeyColumn = "Vehicle and Size"
)

// TableSpec describes how to read one factor table.
type TableSpec struct {
	// Name identifies the table in logs and errors.
	Name string
	// KeyColumn is the primary lookup column, e.g. "Fuel".
	KeyColumn string
	// RegionColumn defaults to "Region".
	RegionColumn string
	// ModeColumn is optional and defaults to "Mode of Transport".
	ModeColumn string
	// Pollutants lists the gases whose factor columns are read. Gases whose
	// value column is absent from the file are skipped.
	Pollutants []Pollutant
}

func (s TableSpec) withDefaults() TableSpec {
	if s.RegionColumn == "" {
		s.RegionColumn = RegionColumn
	}
	if s.ModeColumn == "" {
		s.ModeColumn = ModeColumn
	}
	if len(s.Pollutants) == 0 {
		s.Pollutants = Pollutants
	}
	return s
}

// FuelCO2Spec reads the CO2 fuel-use factor table.
func FuelCO2Spec() TableSpec {
	return TableSpec{Name: "ef_fuel_use_co2", KeyColumn: FuelCO2KeyColumn, Pollutants: []Pollutant{CO2}}
}

// FuelCH4Spec reads the CH4 fuel-use factor table.
func FuelCH4Spec() TableSpec {
	return TableSpec{Name: "ef_fuel_use_ch4_n2o", KeyColumn: FuelCH4KeyColumn, Pollutants: []Pollutant{CH4}}
}

// VehicleSpec reads the freight vehicle factor table, which carries both gases.
func VehicleSpec() TableSpec {
	return TableSpec{Name: "ef_freight", KeyColumn: VehicleKeyColumn, Pollutants: []Pollutant{CO2, CH4}}
}

// Table is a factor table indexed by (key, region).
type Table struct {
	spec    TableSpec
	headers []string
	rows    []Row
	index   map[string][]int
}

func indexKey(key, region string) string {
	return normalize(key) + "\x00" + normalize(region)
}

// NewTable builds a Table from rows already in memory. Rows with a blank key
// are dropped.
func NewTable(spec TableSpec, rows []Row) *Table {
	t := &Table{spec: spec.withDefaults(), index: make(map[string][]int)}
	for _, r := range rows {
		if normalize(r.Key) == "" {
			continue
		}
		t.add(r)
	}
	return t
}

func (t *Table) add(r Row) {
	k := indexKey(r.Key, r.Region)
	t.index[k] = append(t.index[k], len(t.rows))
	t.rows = append(t.rows, r)
}

// ParseTable reads a factor table CSV. The key and region columns are
// required; rows with a blank key cell are skipped.
func ParseTable(r io.Reader, spec TableSpec) (*Table, error) {
	spec = spec.withDefaults()

	s, err := readSheet(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	keyCol, err := s.require(spec.KeyColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	regionCol, err := s.require(spec.RegionColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	modeCol, hasMode := s.column(spec.ModeColumn)
	if !hasMode {
		modeCol = -1
	}

	type factorCols struct{ value, num, den int }
	cols := make(map[Pollutant]factorCols, len(spec.Pollutants))
	for _, p := range spec.Pollutants {
		v, ok := s.column(string(p))
		if !ok {
			continue
		}
		fc := factorCols{value: v, num: -1, den: -1}
		if n, ok := s.column(p.NumeratorColumn()); ok {
			fc.num = n
		}
		if d, ok := s.column(p.DenominatorColumn()); ok {
			fc.den = d
		}
		cols[p] = fc
	}

	t := &Table{spec: spec, headers: s.headers, index: make(map[string][]int)}
	for _, rec := range s.records {
		key := cell(rec, keyCol)
		if key == "" {
			continue
		}
		row := Row{
			Key:     key,
			Region:  cell(rec, regionCol),
			Mode:    cell(rec, modeCol),
			Factors: make(map[Pollutant]Factor, len(cols)),
			Fields:  s.fields(rec),
		}
		for p, fc := range cols {
			raw := cell(rec, fc.value)
			v, ok := parseNumber(raw)
			row.Factors[p] = Factor{
				Raw:         raw,
				Value:       v,
				Valid:       ok,
				Numerator:   cell(rec, fc.num),
				Denominator: cell(rec, fc.den),
			}
		}
		t.add(row)
	}
	return t, nil
}

// Name returns the table's configured name.
func (t *Table) Name() string { return t.spec.Name }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Headers returns the trimmed CSV header labels.
func (t *Table) Headers() []string { return append([]string(nil), t.headers...) }

// Rows returns a copy of every row in file order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Lookup returns every row matching key and region in file order. The first
// row is authoritative. An empty result means no factor is published.
// Returned rows are copies and may be modified by the caller.
func (t *Table) Lookup(key, region string) []Row {
	if t == nil {
		return nil
	}
	idx := t.index[indexKey(key, region)]
	out := make([]Row, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.rows[i].clone())
	}
	return out
}

func (r Row) clone() Row {
	r.Factors = maps.Clone(r.Factors)
	r.Fields = maps.Clone(r.Fields)
	return r
}

// Keys returns the distinct keys sorted alphabetically. An empty region or
// mode matches every row.
func (t *Table) Keys(region, mode string) []string {
	if t == nil {
		return nil
	}
	wantRegion, wantMode := normalize(region), normalize(mode)
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		if wantRegion != "" && normalize(r.Region) != wantRegion {
			continue
		}
		if wantMode != "" && normalize(r.Mode) != wantMode {
			continue
		}
		if seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		out = append(out, r.Key)
	}
	sort.Strings(out)
	return out
}
