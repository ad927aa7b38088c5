package download

import (
	"errors"
	"fmt"
)

var (
	// ErrListEmptyOrMissing reports a run that found no URLs to process.
	ErrListEmptyOrMissing = errors.New("link list empty or missing")
	// ErrUnsafePath reports a target that would land outside the save directory.
	ErrUnsafePath = errors.New("path escapes save directory")
	// ErrTaskFailure matches every TaskError.
	ErrTaskFailure = errors.New("download task failed")
)

// TaskError records a failed task within a run.
type TaskError struct {
	Index int
	URL   string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Index, e.URL, e.Err)
}

func (e *TaskError) Unwrap() []error {
	return []error{ErrTaskFailure, e.Err}
}
