package units

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// matrixAnchor is the first-column label that marks the start of the matrix
// in the reference conversion sheet. Anything above it is free-form notes.
const matrixAnchor = "From Unit"

// ErrMatrixNotFound is returned when the CSV contains no "From Unit" row.
var ErrMatrixNotFound = errors.New("could not find 'From Unit' header in conversion matrix")

// ParseMatrix reads the reference unit conversion sheet.
//
// Layout: an optional preamble, then a row whose first cell is "From Unit",
// then a header row listing destination units (first cell ignored), then one
// row per source unit. The matrix ends at the first blank row or a row with
// an empty first cell. Blank cells are left unresolved and columns with a
// blank header are skipped.
func ParseMatrix(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading conversion matrix: %w", err)
	}

	start := -1
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(stripBOM(row[0])) == matrixAnchor {
			start = i
			break
		}
	}
	if start < 0 || start+1 >= len(rows) {
		return nil, ErrMatrixNotFound
	}

	// Column labels may live on the anchor row itself or on the row that
	// follows it, depending on how the sheet was exported.
	headerRow := rows[start]
	dataStart := start + 1
	if !hasLabels(headerRow[1:]) {
		headerRow = rows[start+1]
		dataStart = start + 2
	}
	columns := make([]string, 0, len(headerRow))
	for _, h := range headerRow[1:] {
		columns = append(columns, strings.TrimSpace(h))
	}

	b := newBuilder()
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			break
		}
		from := strings.TrimSpace(row[0])
		for j, raw := range row[1:] {
			if j >= len(columns) {
				break
			}
			if columns[j] == "" {
				continue
			}
			cell := strings.TrimSpace(raw)
			if cell == "" {
				continue
			}
			v, parseErr := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if parseErr != nil {
				return nil, fmt.Errorf("conversion matrix line %d, %q -> %q: invalid factor %q: %w",
					i+1, from, columns[j], cell, parseErr)
			}
			b.set(from, columns[j], v)
		}
	}

	return b.build(), nil
}

func hasLabels(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
