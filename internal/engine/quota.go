package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxDrainSteps bounds how many deferred tasks one unit of work may
// run. Listeners that keep scheduling work on every delivery hit it.
const DefaultMaxDrainSteps = 1000

// drainGuard counts deferred tasks run while draining one unit of work.
type drainGuard struct {
	maxSteps int
	current  int
}

func newDrainGuard(maxSteps int) *drainGuard {
	return &drainGuard{maxSteps: maxSteps}
}

// Check increments the step counter and fails once the limit is passed.
func (g *drainGuard) Check(taskName string) error {
	g.current++
	if g.current > g.maxSteps {
		return &DrainLimitError{
			Task:  taskName,
			Steps: g.current,
			Limit: g.maxSteps,
		}
	}
	return nil
}

// DrainLimitError is returned when draining deferred tasks exceeds the
// configured step limit. The remaining tasks are dropped.
type DrainLimitError struct {
	Task  string // task that would have run past the limit
	Steps int
	Limit int
}

func (e *DrainLimitError) Error() string {
	return fmt.Sprintf("deferred task %q exceeded drain limit: %d steps > %d limit",
		e.Task, e.Steps, e.Limit)
}

// IsDrainLimitError reports whether err wraps a DrainLimitError.
func IsDrainLimitError(err error) bool {
	var de *DrainLimitError
	return errors.As(err, &de)
}
