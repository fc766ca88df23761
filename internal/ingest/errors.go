package ingest

import (
	"encoding/json"
	"fmt"
)

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by the ingest package.
const (
	ErrEmptyDocument   constError = "activity document is empty"
	ErrInvalidDocument constError = "invalid activity document"
	ErrInvalidNumber   constError = "invalid number"
	ErrMissingHeader   constError = "activity CSV has no recognized columns"
	ErrNoSupplierData  constError = "no supplier data"
)

// RowError reports a malformed field in one activity row. Row is the
// zero-based row index within the document.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// MarshalJSON renders the error as {"row", "field", "message"}.
func (e RowError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Row     int    `json:"row"`
		Field   string `json:"field"`
		Message string `json:"message"`
	}{e.Row, e.Field, msg})
}
