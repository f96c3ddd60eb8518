package loader

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is returned by Begin when the source cannot be opened.
// No load is started and nothing is delivered.
var ErrSourceUnavailable = errors.New("source unavailable")

// LoadIOError reports a failure after the pipeline started. Every batch
// delivered before the failure is valid; RowsRead counts the data rows they
// contain.
type LoadIOError struct {
	RowsRead int
	Err      error
}

func (e *LoadIOError) Error() string {
	return fmt.Sprintf("load failed after %d rows: %v", e.RowsRead, e.Err)
}

func (e *LoadIOError) Unwrap() error { return e.Err }

// InvalidEncodingError is wrapped by LoadIOError when a field is not valid
// UTF-8.
type InvalidEncodingError struct {
	Line  int
	Field int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 on line %d, field %d", e.Line, e.Field+1)
}
