package cli

// ExitCodeRowErrors is returned by compute --strict when the document has
// malformed fields.
const ExitCodeRowErrors = 2

// ExitError carries a process exit code out of a command.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}
