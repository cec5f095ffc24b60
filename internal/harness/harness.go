package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/engine"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/journal"
	"github.com/slayermass/stateform/internal/schema"
	"github.com/slayermass/stateform/internal/testutil"
	"github.com/slayermass/stateform/internal/value"
)

// Harness runs one scenario against a live engine with deterministic ids and
// a logical clock, so traces are reproducible.
type Harness struct {
	engine  *engine.Engine
	clock   *bus.Clock
	result  *Result
	logger  *slog.Logger
	journal *journal.Journal
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	journal *journal.Journal
}

// WithLogger sends engine and harness logs to logger. Runs are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithJournal records the run and its trace in j.
func WithJournal(j *journal.Journal) Option {
	return func(c *runConfig) {
		c.journal = j
	}
}

// Run executes a scenario and returns the result. Step failures that were
// not declared with expect_error and failed assertions mark the result as
// failed; err is reserved for scenarios that cannot run at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{
		clock:   bus.NewClock(),
		result:  NewResult(),
		logger:  cfg.logger,
		journal: cfg.journal,
	}

	eng, err := h.buildEngine(scenario)
	if err != nil {
		return nil, err
	}
	h.engine = eng
	h.result.engine = eng

	for i, step := range scenario.Steps {
		h.executeStep(i, step)
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	if h.journal != nil {
		if err := h.record(context.Background(), scenario.Name); err != nil {
			return nil, err
		}
	}

	return h.result, nil
}

func (h *Harness) buildEngine(s *Scenario) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("id")),
		engine.WithObserver(bus.ObserverFunc(h.observe)),
	}
	if s.Mode != "" {
		mode, err := field.ParseMode(s.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithMode(mode))
	}

	if s.Form != "" {
		forms, err := schema.LoadFile(s.Form)
		if err != nil {
			return nil, fmt.Errorf("load form: %w", err)
		}
		form, err := schema.Find(forms, s.FormName)
		if err != nil {
			return nil, err
		}
		if errs := schema.Validate(form, nil); len(errs) > 0 {
			return nil, fmt.Errorf("form %s: %w", form.Name, errs[0])
		}
		eng, err := schema.Build(form, opts...)
		if err != nil {
			return nil, err
		}
		return eng, nil
	}

	eng, err := engine.New(s.Defaults, opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, nil
}

// observe appends every emitted event to the trace.
func (h *Harness) observe(ev bus.Event) {
	te := TraceEvent{
		Seq:  h.clock.Next(),
		Type: string(ev.Kind),
		Path: ev.Path,
	}
	switch ev.Kind {
	case bus.Change:
		te.Value = value.Clone(ev.Value)
	case bus.Error:
		te.Errors = ev.Errors
		if te.Errors == nil {
			te.Errors = []errstore.Entry{}
		}
	}
	h.result.Trace = append(h.result.Trace, te)
}

// executeStep runs one step. The step marker is traced before the events the
// step causes.
func (h *Harness) executeStep(i int, step Step) {
	marker := len(h.result.Trace)
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Seq:  h.clock.Next(),
		Type: EventStep,
		Op:   step.Do,
		Path: step.Path,
	})

	err := h.dispatch(step)

	switch {
	case err != nil && step.ExpectError == "":
		h.result.Trace[marker].Err = err.Error()
		h.result.AddError(fmt.Sprintf("steps[%d] %s %q: unexpected error: %v", i, step.Do, step.Path, err))
	case err != nil:
		h.result.Trace[marker].Err = err.Error()
		if !strings.Contains(err.Error(), step.ExpectError) {
			h.result.AddError(fmt.Sprintf("steps[%d] %s %q: error %q does not contain %q", i, step.Do, step.Path, err, step.ExpectError))
		}
	case step.ExpectError != "":
		h.result.AddError(fmt.Sprintf("steps[%d] %s %q: expected error containing %q, got none", i, step.Do, step.Path, step.ExpectError))
	}

	h.logger.Debug("scenario step completed",
		"step", i,
		"op", step.Do,
		"path", step.Path,
		"events", len(h.result.Trace)-marker-1,
	)
}

func (h *Harness) dispatch(step Step) error {
	e := h.engine
	switch step.Do {
	case OpRegister:
		mode, err := field.ParseMode(step.Mode)
		if err != nil {
			return err
		}
		return e.Register(step.Path, step.Type, engine.FieldOptions{
			Options: step.Options,
			Mode:    mode,
			Persist: step.Persist,
		})

	case OpUnregister:
		e.Unregister(step.Path)
		return nil

	case OpChange:
		return e.OnChange(step.Path, step.Value)

	case OpBlur:
		return e.OnBlur(step.Path)

	case OpSet:
		var opts []engine.SetOption
		if step.Validate {
			opts = append(opts, engine.WithTrigger())
		}
		if step.Merge {
			opts = append(opts, engine.WithMerge())
		}
		return e.SetValue(step.Path, step.Value, opts...)

	case OpAppend, OpRemove:
		return <-e.ChangeStateDirectly(step.Path, step.Value, engine.ListMeta{Append: step.Do == OpAppend})

	case OpSubmit:
		return e.OnSubmit(
			func(values value.Object, status engine.Status) {
				h.result.Submits = append(h.result.Submits, SubmitOutcome{Success: true, Values: values, Status: status})
			},
			func(errs map[string][]errstore.Entry) {
				h.result.Submits = append(h.result.Submits, SubmitOutcome{Status: e.GetStatus(), Errors: errs})
			},
		)()

	case OpTrigger:
		paths := step.Paths
		if step.Path != "" {
			paths = append([]string{step.Path}, paths...)
		}
		return e.Trigger(paths...)

	case OpReset:
		baseline, err := parseBaseline(step.Baseline)
		if err != nil {
			return err
		}
		return e.Reset(step.Value, engine.ResetOptions{Revalidate: step.Revalidate, Baseline: baseline})

	case OpSetError:
		if step.Type == "" {
			return e.SetError(step.Path, step.Message)
		}
		return e.SetErrorEntry(step.Path, errstore.Entry{Type: step.Type, Message: step.Message})

	case OpClearErrors:
		return e.ClearErrors(step.Path, step.Types...)
	}
	return fmt.Errorf("unknown operation %q", step.Do)
}

func parseBaseline(s string) (engine.Baseline, error) {
	switch s {
	case "", "keep":
		return engine.BaselineKeep, nil
	case "merge":
		return engine.BaselineMerge, nil
	case "replace":
		return engine.BaselineReplace, nil
	}
	return 0, fmt.Errorf("unknown baseline %q (want keep, merge or replace)", s)
}

// record writes the run and its trace to the journal.
func (h *Harness) record(ctx context.Context, scenario string) error {
	runID, err := h.journal.StartRun(ctx, scenario)
	if err != nil {
		return fmt.Errorf("journal run: %w", err)
	}

	events := make([]journal.Event, 0, len(h.result.Trace))
	for _, te := range h.result.Trace {
		payload, err := value.MarshalCanonical(te.payload())
		if err != nil {
			return fmt.Errorf("journal event %d: %w", te.Seq, err)
		}
		events = append(events, journal.Event{Seq: te.Seq, Kind: te.Type, Path: te.Path, Payload: payload})
	}
	if err := h.journal.Append(ctx, runID, events...); err != nil {
		return fmt.Errorf("journal run: %w", err)
	}
	if err := h.journal.FinishRun(ctx, runID, h.result.Pass, h.result.Errors); err != nil {
		return fmt.Errorf("journal run: %w", err)
	}

	h.result.RunID = runID
	h.logger.Info("scenario journaled", "scenario", scenario, "run_id", runID, "pass", h.result.Pass)
	return nil
}
