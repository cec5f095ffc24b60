package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, ev := range e.Trace {
			if ev.Type == EventStep {
				fmt.Fprintf(&buf, "  [%d] %s %q\n", ev.Seq, ev.Op, ev.Path)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertValue:
			err = assertValue(result, a)
		case AssertErrors:
			err = assertErrors(result, a)
		case AssertDirty:
			err = assertDirty(result, a)
		case AssertSubmit:
			err = assertSubmit(result, a)
		case AssertEventEmitted:
			err = assertEventEmitted(result.Trace, a)
		case AssertEventCount:
			err = assertEventCount(result.Trace, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func canonicalString(v any) string {
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

// assertValue compares the current value at a path with the expected one.
func assertValue(result *Result, a Assertion) error {
	if result.engine == nil {
		return fmt.Errorf("value assertion requires an engine")
	}
	want, err := value.FromAny(a.Expect)
	if err != nil {
		return fmt.Errorf("value assertion on %q: %w", a.Path, err)
	}
	got := result.engine.GetValue(a.Path)
	if value.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertValue,
		Expected: fmt.Sprintf("%s = %s", a.Path, canonicalString(want)),
		Actual:   fmt.Sprintf("%s = %s", a.Path, canonicalString(got)),
		Trace:    result.Trace,
	}
}

// assertErrors compares the visible errors at a path. An expected entry
// without a type means "validate"; params are compared only when given.
func assertErrors(result *Result, a Assertion) error {
	if result.engine == nil {
		return fmt.Errorf("errors assertion requires an engine")
	}
	want, err := expectedEntries(a.Expect)
	if err != nil {
		return fmt.Errorf("errors assertion on %q: %w", a.Path, err)
	}
	got := result.engine.GetErrors(a.Path)

	fail := func() error {
		return &AssertionError{
			Type:     AssertErrors,
			Expected: fmt.Sprintf("%s errors %s", a.Path, canonicalString(entriesToAny(want))),
			Actual:   fmt.Sprintf("%s errors %s", a.Path, canonicalString(entriesToAny(got))),
			Trace:    result.Trace,
		}
	}

	if len(want) != len(got) {
		return fail()
	}
	for i := range want {
		if want[i].Type != got[i].Type || want[i].Message != got[i].Message {
			return fail()
		}
		if want[i].Params != nil && canonicalString(want[i].Params) != canonicalString(got[i].Params) {
			return fail()
		}
	}
	return nil
}

func expectedEntries(raw any) ([]errstore.Entry, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expect must be a list of entries, got %T", raw)
	}
	entries := make([]errstore.Entry, 0, len(list))
	for i, item := range list {
		switch it := item.(type) {
		case string:
			entries = append(entries, errstore.Entry{Type: errstore.TypeValidate, Message: it})
		case map[string]any:
			e := errstore.Entry{Type: errstore.TypeValidate}
			for k, v := range it {
				switch k {
				case "type":
					e.Type = fmt.Sprint(v)
				case "message":
					e.Message = fmt.Sprint(v)
				case "params":
					params, ok := v.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("expect[%d].params must be a map", i)
					}
					e.Params = params
				default:
					return nil, fmt.Errorf("expect[%d]: unknown key %q", i, k)
				}
			}
			entries = append(entries, e)
		default:
			return nil, fmt.Errorf("expect[%d] must be a message or a map, got %T", i, item)
		}
	}
	return entries, nil
}

// assertDirty compares the dirty field set, ignoring order.
func assertDirty(result *Result, a Assertion) error {
	if result.engine == nil {
		return fmt.Errorf("dirty assertion requires an engine")
	}
	want, err := stringList(a.Expect)
	if err != nil {
		return fmt.Errorf("dirty assertion: %w", err)
	}
	got := result.engine.GetDirtyFields()

	slices.Sort(want)
	sorted := slices.Clone(got)
	slices.Sort(sorted)
	if slices.Equal(want, sorted) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDirty,
		Expected: fmt.Sprintf("dirty fields %v", want),
		Actual:   fmt.Sprintf("dirty fields %v", sorted),
		Trace:    result.Trace,
	}
}

func stringList(raw any) ([]string, error) {
	if raw == nil {
		return []string{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expect must be a list of paths, got %T", raw)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expect[%d] must be a string, got %T", i, item)
		}
		out[i] = s
	}
	return out, nil
}

// assertSubmit checks the last submit's outcome and the submit count.
func assertSubmit(result *Result, a Assertion) error {
	if a.Outcome != "" {
		if len(result.Submits) == 0 {
			return &AssertionError{
				Type:     AssertSubmit,
				Expected: fmt.Sprintf("submit outcome %s", a.Outcome),
				Actual:   "no submit step ran",
				Trace:    result.Trace,
			}
		}
		last := result.Submits[len(result.Submits)-1]
		got := "failure"
		if last.Success {
			got = "success"
		}
		if got != a.Outcome {
			return &AssertionError{
				Type:     AssertSubmit,
				Expected: fmt.Sprintf("submit outcome %s", a.Outcome),
				Actual:   fmt.Sprintf("submit outcome %s with errors %v", got, last.Errors),
				Trace:    result.Trace,
			}
		}
	}

	if a.Count > 0 && len(result.Submits) != a.Count {
		return &AssertionError{
			Type:     AssertSubmit,
			Expected: fmt.Sprintf("%d submits", a.Count),
			Actual:   fmt.Sprintf("%d submits", len(result.Submits)),
			Trace:    result.Trace,
		}
	}
	return nil
}

func countEvents(trace []TraceEvent, kind, path string) int {
	n := 0
	for _, ev := range trace {
		if ev.Type == kind && ev.Path == path {
			n++
		}
	}
	return n
}

// assertEventEmitted checks that at least one event of the kind reached the
// path.
func assertEventEmitted(trace []TraceEvent, a Assertion) error {
	if countEvents(trace, a.Kind, a.Path) > 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventEmitted,
		Expected: fmt.Sprintf("%s event on %q", a.Kind, a.Path),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventCount checks the exact number of events of the kind on the
// path.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	n := countEvents(trace, a.Kind, a.Path)
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d %s events on %q", a.Count, a.Kind, a.Path),
		Actual:   fmt.Sprintf("%d events", n),
		Trace:    trace,
	}
}

// assertEventOrder checks that the first occurrences of the listed events
// appear in order. Intervening events are allowed.
func assertEventOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Type == EventStep {
			continue
		}
		key := ev.Type + ":" + ev.Path
		if _, seen := positions[key]; !seen {
			positions[key] = i + 1
		}
	}

	for _, want := range a.Events {
		if positions[want] == 0 {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("all events present: %v", a.Events),
				Actual:   fmt.Sprintf("missing event: %s", want),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Events); i++ {
		prev, curr := a.Events[i-1], a.Events[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}
