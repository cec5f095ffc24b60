package harness

import (
	"github.com/slayermass/stateform/internal/engine"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/value"
)

// Trace event types.
const (
	EventStep   = "step"
	EventChange = "change"
	EventError  = "error"
)

// TraceEvent is one entry of a run's trace: either a step marker or an event
// the form emitted while the step ran.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`
	Path string `json:"path"`

	// Op and Err are set on step markers. Err holds the error the step
	// returned, if any.
	Op  string `json:"op,omitempty"`
	Err string `json:"err,omitempty"`

	// Value is set on change events.
	Value value.Value `json:"value,omitempty"`

	// Errors is set on error events; suppressed entries are included.
	Errors []errstore.Entry `json:"errors,omitempty"`
}

// SubmitOutcome is what one submit step produced.
type SubmitOutcome struct {
	Success bool                        `json:"success"`
	Values  value.Object                `json:"values,omitempty"`
	Status  engine.Status               `json:"status"`
	Errors  map[string][]errstore.Entry `json:"errors,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as declared and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace contains step markers and emitted events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Submits records each submit step in order.
	Submits []SubmitOutcome `json:"submits,omitempty"`

	// RunID is the journal run id when the run was journaled.
	RunID string `json:"run_id,omitempty"`

	engine *engine.Engine
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Engine returns the engine the scenario ran against, for inspection after
// the run.
func (r *Result) Engine() *engine.Engine {
	return r.engine
}
