package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// normalize folds a key, region, or header into its comparison form.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sheet is a header-mapped CSV document.
type sheet struct {
	headers []string
	index   map[string]int
	records [][]string
}

// readSheet reads a CSV whose first row is the header. Header labels are
// trimmed, so "Units " and "Units" address the same column. Lines with a
// different field count than the header are tolerated.
func readSheet(r io.Reader) (*sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &sheet{index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	s := &sheet{index: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		label := strings.TrimSpace(h)
		s.headers = append(s.headers, label)
		if _, dup := s.index[normalize(label)]; !dup {
			s.index[normalize(label)] = i
		}
	}

	line := 1
	for {
		rec, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, readErr)
		}
		s.records = append(s.records, rec)
	}
	return s, nil
}

// column returns the position of a header, ignoring case and whitespace.
func (s *sheet) column(name string) (int, bool) {
	i, ok := s.index[normalize(name)]
	return i, ok
}

// require returns the position of a header or ErrMissingColumn.
func (s *sheet) require(name string) (int, error) {
	i, ok := s.column(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return i, nil
}

// cell returns the trimmed value at column i, or "" when the record is short.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// fields maps every header to its value in rec.
func (s *sheet) fields(rec []string) map[string]string {
	out := make(map[string]string, len(s.headers))
	for i, h := range s.headers {
		if h == "" {
			continue
		}
		out[h] = cell(rec, i)
	}
	return out
}

// parseNumber parses a numeric cell, accepting thousands separators.
func parseNumber(raw string) (float64, bool) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
