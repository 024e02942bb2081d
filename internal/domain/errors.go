package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent error conditions in the engine.
// They can be checked with errors.Is.
var (
	// ErrBusy is returned when a run is submitted while another is active.
	ErrBusy = errors.New("monet: a batch run is already active")

	// ErrNotRunning is returned when cancelling while no run is active.
	ErrNotRunning = errors.New("monet: no active batch run")

	// ErrInvalidRequest is returned when a run request fails validation.
	ErrInvalidRequest = errors.New("monet: invalid run request")

	// ErrShutdownTimeout is returned when the active run does not finish
	// within the shutdown timeout.
	ErrShutdownTimeout = errors.New("monet: shutdown timeout exceeded")

	// ErrNoKeptTracks is the reason attached to SkippedEmpty outcomes.
	ErrNoKeptTracks = errors.New("no tracks matched the filter")

	// ErrEmptyFile is returned when a file has a header but no data rows.
	ErrEmptyFile = errors.New("file has no data rows")
)

// SchemaError reports a header that cannot be mapped to the required roles.
type SchemaError struct {
	Role    Role
	Columns []string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("schema: %s column: %s", e.Role, e.Reason)
	}
	return fmt.Sprintf("schema: %s column: %s: %s", e.Role, e.Reason, quoteJoin(e.Columns))
}

// ClassifierInitError reports a failure to initialize the classifier. It is
// fatal to the whole run.
type ClassifierInitError struct {
	Backend string
	Err     error
}

func (e *ClassifierInitError) Error() string {
	return fmt.Sprintf("classifier %s: init: %v", e.Backend, e.Err)
}

func (e *ClassifierInitError) Unwrap() error {
	return e.Err
}

// FileError wraps a file-scoped failure with the stage it happened in.
type FileError struct {
	Path  string
	Stage FileStage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func quoteJoin(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(q, ", ")
}
