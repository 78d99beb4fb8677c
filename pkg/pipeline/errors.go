package pipeline

import "fmt"

// StageError wraps a failure with the stage it originated in, so callers
// can attribute it without inspecting the underlying error's internals.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageFailure(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
