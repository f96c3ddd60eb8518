package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFile is returned by operations that need an open file.
	ErrNoFile = errors.New("no file open")
	// ErrLoadInProgress is returned while a load is running. Mutations and
	// a second load are rejected until it finishes.
	ErrLoadInProgress = errors.New("load in progress")
	// ErrFileOpen is returned by BeginLoad when a file is already open. The
	// caller must Close it first.
	ErrFileOpen = errors.New("a file is already open")
	// ErrInvalidCell is returned for row or column positions outside the grid.
	ErrInvalidCell = errors.New("cell out of range")
	// ErrUnknownColumn is returned when a header name does not exist.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrPartialLoad is returned when saving a partially loaded file over
	// its own source. Saving to another path is allowed.
	ErrPartialLoad = errors.New("file was only partly loaded, save it under another name")
)

// SaveIOError reports a failed write. In-memory state is unchanged and the
// file stays marked as changed.
type SaveIOError struct {
	Path string
	Err  error
}

func (e *SaveIOError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *SaveIOError) Unwrap() error { return e.Err }
