package engine

import "fmt"

// Status is the outcome of one record and pollutant calculation.
type Status string

const (
	// StatusSuccess means a factor was resolved and mass computed.
	StatusSuccess Status = "success"
	// StatusNoData means no factor or insufficient inputs; mass is 0.
	StatusNoData Status = "no_data"
	// StatusUnresolvedUnit means a required conversion is missing; mass is 0.
	StatusUnresolvedUnit Status = "unresolved_unit"
	// StatusError means the calculation failed unexpectedly; mass is 0.
	StatusError Status = "error"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusSuccess, StatusNoData, StatusUnresolvedUnit, StatusError}
}

// String returns the status label.
func (s Status) String() string { return string(s) }

// Err maps the status to its sentinel error, or nil for success.
func (s Status) Err() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusNoData:
		return ErrNoData
	case StatusUnresolvedUnit:
		return ErrUnresolvedUnit
	case StatusError:
		return ErrCalculation
	default:
		return fmt.Errorf("%w: unknown status %q", ErrCalculation, string(s))
	}
}

// StatusIcon returns a single-character icon for table output.
func StatusIcon(s Status) string {
	switch s {
	case StatusSuccess:
		return "\u2713" // check mark
	case StatusNoData:
		return "-"
	case StatusUnresolvedUnit:
		return "?"
	case StatusError:
		return "\u2717" // ballot x
	default:
		return " "
	}
}
