// Package units holds the unit conversion matrix used to normalize emission
// factors.
//
// The matrix is sparse and directional: only pairs declared in the reference
// data resolve. There is no inverse or transitive inference, so "Mile" to
// "Kilometer" resolves only if that exact cell is populated.
package units

import (
	"sort"
	"strings"
)

// MetricTon is the canonical mass unit every emission factor numerator is
// converted into.
const MetricTon = "Metric Ton"

// Table is an immutable from-unit by to-unit conversion lookup.
// A Table is safe for concurrent use once built.
type Table struct {
	cells map[string]map[string]float64
	from  []string
	to    []string
}

// Entry is one declared conversion.
type Entry struct {
	From   string
	To     string
	Factor float64
}

// NewTable builds a Table from explicit entries. Later duplicates of the same
// pair are ignored so the first declaration wins.
func NewTable(entries []Entry) *Table {
	b := newBuilder()
	for _, e := range entries {
		b.set(e.From, e.To, e.Factor)
	}
	return b.build()
}

// normalize folds a unit label into its lookup form.
func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Convert returns the factor that converts a quantity in from-units into
// to-units. ok is false when either unit is unknown or the cell is blank;
// a declared zero returns (0, true).
func (t *Table) Convert(from, to string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	row, ok := t.cells[normalize(from)]
	if !ok {
		return 0, false
	}
	v, ok := row[normalize(to)]
	return v, ok
}

// Len returns the number of populated cells.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, row := range t.cells {
		n += len(row)
	}
	return n
}

// FromUnits returns the row headers in declaration order.
func (t *Table) FromUnits() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.from...)
}

// ToUnits returns the column headers in declaration order.
func (t *Table) ToUnits() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.to...)
}

// Targets returns every unit the given unit converts into, sorted.
func (t *Table) Targets(from string) []string {
	if t == nil {
		return nil
	}
	row := t.cells[normalize(from)]
	out := make([]string, 0, len(row))
	for _, label := range t.to {
		if _, ok := row[normalize(label)]; ok {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

type builder struct {
	cells    map[string]map[string]float64
	from     []string
	to       []string
	seenFrom map[string]bool
	seenTo   map[string]bool
}

func newBuilder() *builder {
	return &builder{
		cells:    make(map[string]map[string]float64),
		seenFrom: make(map[string]bool),
		seenTo:   make(map[string]bool),
	}
}

func (b *builder) set(from, to string, factor float64) {
	f, t := normalize(from), normalize(to)
	if f == "" || t == "" {
		return
	}
	if !b.seenFrom[f] {
		b.seenFrom[f] = true
		b.from = append(b.from, strings.TrimSpace(from))
	}
	if !b.seenTo[t] {
		b.seenTo[t] = true
		b.to = append(b.to, strings.TrimSpace(to))
	}
	row, ok := b.cells[f]
	if !ok {
		row = make(map[string]float64)
		b.cells[f] = row
	}
	if _, exists := row[t]; exists {
		return
	}
	row[t] = factor
}

func (b *builder) build() *Table {
	return &Table{cells: b.cells, from: b.from, to: b.to}
}
