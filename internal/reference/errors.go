package reference

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrMissingColumn indicates a required header is absent from a table file.
	ErrMissingColumn = constError("missing required column")

	// ErrUnknownPollutant indicates a pollutant name outside CO2 and CH4.
	ErrUnknownPollutant = constError("unknown pollutant")

	// ErrUnknownLookup indicates a lookup name with no backing column.
	ErrUnknownLookup = constError("unknown lookup")

	// ErrIncompatibleDataset indicates the dataset manifest version does not
	// satisfy the configured constraint.
	ErrIncompatibleDataset = constError("incompatible reference dataset version")
)
