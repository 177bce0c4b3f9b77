package cli

import "errors"

// Exit codes for dsv.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a command error such as unreadable input or
	// invalid options.
	ExitFailure = 1

	// ExitBadData indicates the input was read but contained bad data
	// (only with --strict).
	ExitBadData = 2
)

// ErrBadDataFound signals that --strict input contained bad data. It carries
// no message of its own; findings have already been logged.
var ErrBadDataFound = errors.New("bad data found")

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrBadDataFound):
		return ExitBadData
	default:
		return ExitFailure
	}
}
