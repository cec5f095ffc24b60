package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/value"
)

// Snapshot renders a run's trace as canonical JSON. Equal traces produce
// identical bytes, so snapshots can be compared byte for byte.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, te := range result.Trace {
		trace[i] = te.canonical()
	}
	return value.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"trace":         trace,
	})
}

func (te TraceEvent) canonical() map[string]any {
	m := map[string]any{
		"seq":  te.Seq,
		"type": te.Type,
		"path": te.Path,
	}
	switch te.Type {
	case EventStep:
		m["op"] = te.Op
		if te.Err != "" {
			m["err"] = te.Err
		}
	case EventChange:
		m["value"] = te.payload()
	case EventError:
		m["errors"] = te.payload()
	}
	return m
}

// payload is the event-specific part of a trace entry, as stored in the
// journal.
func (te TraceEvent) payload() any {
	switch te.Type {
	case EventChange:
		if te.Value == nil {
			return value.Empty{}
		}
		return te.Value
	case EventError:
		return entriesToAny(te.Errors)
	}
	m := map[string]any{"op": te.Op}
	if te.Err != "" {
		m["err"] = te.Err
	}
	return m
}

func entriesToAny(entries []errstore.Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		m := map[string]any{
			"type":    e.Type,
			"message": e.Message,
		}
		if len(e.Params) > 0 {
			m["params"] = e.Params
		}
		if e.Suppressed {
			m["suppressed"] = true
		}
		out[i] = m
	}
	return out
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
