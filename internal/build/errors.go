package build

import (
	"errors"
	"fmt"
)

var (
	// ErrNotADirectory indicates an ancestor of an output path exists and is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrOverwriteDisallowed indicates the output exists and overwriting is disabled.
	ErrOverwriteDisallowed = errors.New("overwriting existing files is disallowed")
	// ErrInvalidView indicates a view module value that cannot be used as views.
	ErrInvalidView = errors.New("invalid view")
)

// StageErrorKind classifies a stage failure.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError wraps the error that aborted a stage.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }
