package reference

import (
	"fmt"
	"io"
	"strings"
)

// Columns of the supplier product matrix.
const (
	ProductKeyColumn    = "SUPPLIER-PRODUCT-LOCATION"
	ProductFactorColumn = "MANUFACTURING-EMISSIONS-FACTOR"
)

// ProductKey composes the matrix key for a supplier, product, and location.
func ProductKey(supplier, product, location string) string {
	return strings.TrimSpace(supplier) + " - " + strings.TrimSpace(product) + " - " + strings.TrimSpace(location)
}

// ProductRow is one supplier product matrix record.
type ProductRow struct {
	Key    string            `json:"key"`
	Factor Factor            `json:"factor"`
	Fields map[string]string `json:"fields"`
}

// ProductTable maps supplier product location keys to manufacturing factors
// in tCO2e per metric tonne. Keys match exactly after trimming; case matters.
type ProductTable struct {
	rows  []ProductRow
	index map[string]int
}

// NewProductTable builds a ProductTable from key/factor pairs.
func NewProductTable(factors map[string]float64) *ProductTable {
	t := &ProductTable{index: make(map[string]int, len(factors))}
	for k, v := range factors {
		t.add(ProductRow{Key: strings.TrimSpace(k), Factor: Factor{Value: v, Valid: true}})
	}
	return t
}

func (t *ProductTable) add(r ProductRow) {
	if _, dup := t.index[r.Key]; !dup {
		t.index[r.Key] = len(t.rows)
	}
	t.rows = append(t.rows, r)
}

// ParseProductTable reads the supplier product matrix CSV.
func ParseProductTable(r io.Reader) (*ProductTable, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, fmt.Errorf("source_product_matrix: %w", err)
	}
	keyCol, err := s.require(ProductKeyColumn)
	if err != nil {
		return nil, fmt.Errorf("source_product_matrix: %w", err)
	}
	factorCol, hasFactor := s.column(ProductFactorColumn)
	if !hasFactor {
		factorCol = -1
	}

	t := &ProductTable{index: make(map[string]int)}
	for _, rec := range s.records {
		key := cell(rec, keyCol)
		if key == "" {
			continue
		}
		raw := cell(rec, factorCol)
		v, ok := parseNumber(raw)
		t.add(ProductRow{
			Key:    key,
			Factor: Factor{Raw: raw, Value: v, Valid: ok},
			Fields: s.fields(rec),
		})
	}
	return t, nil
}

// Lookup returns the manufacturing factor for key. ok is false when the key is
// absent or its factor cell is blank or malformed.
func (t *ProductTable) Lookup(key string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[strings.TrimSpace(key)]
	if !ok {
		return 0, false
	}
	f := t.rows[i].Factor
	return f.Value, f.Valid
}

// Filter returns every row whose key matches exactly after trimming.
func (t *ProductTable) Filter(key string) []ProductRow {
	if t == nil {
		return nil
	}
	want := strings.TrimSpace(key)
	var out []ProductRow
	for _, r := range t.rows {
		if r.Key == want {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *ProductTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}
