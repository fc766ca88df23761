package engine

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors describing why a record produced no emissions. They are
// surfaced through EmissionResult.Err and never abort a batch.
var (
	// ErrNoData indicates no factor is published for the lookup, or the
	// record lacks the inputs its calculation path needs.
	ErrNoData = constError("no emission factor data")

	// ErrUnresolvedUnit indicates a required unit conversion is missing from
	// the conversion matrix.
	ErrUnresolvedUnit = constError("unresolved unit conversion")

	// ErrCalculation indicates an unexpected failure while calculating a record.
	ErrCalculation = constError("emission calculation failed")

	// ErrNilRecord indicates a nil record in the input batch.
	ErrNilRecord = constError("activity record is nil")
)
