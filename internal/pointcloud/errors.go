package pointcloud

import (
	"errors"
	"fmt"
)

var (
	// ErrSkippedLine marks a line whose field count does not match the
	// layout. Headers and footers end up here; it is not a failure.
	ErrSkippedLine = errors.New("field count does not match layout")

	// ErrMalformedLine marks a data line that could not be converted into a
	// point (non-numeric field or a column index outside the line).
	ErrMalformedLine = errors.New("malformed data line")

	// ErrConsistencyViolation is returned when the build pass does not see
	// the same points the bounds pass saw.
	ErrConsistencyViolation = errors.New("source changed between passes")

	// ErrEmptyInput is available to callers that treat a cloud with no
	// valid points as a failure. The loader itself does not return it.
	ErrEmptyInput = errors.New("no valid points in source")

	// ErrInvalidConfiguration is returned for layouts or options that can
	// not drive a load.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// LineError ties a per-line condition to its 1-based line number.
type LineError struct {
	Line  int
	Field string
	Err   error
}

func (e *LineError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Field)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
