package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/validator"
)

// Scenario is a scripted sequence of form interactions with assertions on
// the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Form is an optional CUE or HCL form definition. Relative paths are
	// resolved against the scenario file's directory. When set, the engine
	// is built from it and Defaults must be empty.
	Form string `yaml:"form,omitempty"`

	// FormName picks a form when the definition file holds several.
	FormName string `yaml:"form_name,omitempty"`

	// Mode overrides the engine-wide validation mode.
	Mode string `yaml:"mode,omitempty"`

	// Defaults seeds the engine when no form file is given.
	Defaults map[string]any `yaml:"defaults,omitempty"`

	// Steps run in order, each as its own unit of work.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step operations.
const (
	OpRegister    = "register"
	OpUnregister  = "unregister"
	OpChange      = "change"
	OpBlur        = "blur"
	OpSet         = "set"
	OpAppend      = "append"
	OpRemove      = "remove"
	OpSubmit      = "submit"
	OpTrigger     = "trigger"
	OpReset       = "reset"
	OpSetError    = "set_error"
	OpClearErrors = "clear_errors"
)

// Step is one interaction.
type Step struct {
	// Do is the operation (OpRegister, OpChange, ...).
	Do string `yaml:"do"`

	// Path is the target path. Trigger also accepts Paths.
	Path  string   `yaml:"path,omitempty"`
	Paths []string `yaml:"paths,omitempty"`

	// Value is the written value (change, set, append, remove) or the reset
	// values. An absent value resets to the baseline.
	Value any `yaml:"value,omitempty"`

	// Type is the field type (register) or the error type (set_error).
	Type string `yaml:"type,omitempty"`

	// Register settings.
	Mode    string            `yaml:"mode,omitempty"`
	Persist bool              `yaml:"persist,omitempty"`
	Options validator.Options `yaml:"options,omitempty"`

	// Set settings.
	Validate bool `yaml:"validate,omitempty"`
	Merge    bool `yaml:"merge,omitempty"`

	// Reset settings.
	Revalidate bool   `yaml:"revalidate,omitempty"`
	Baseline   string `yaml:"baseline,omitempty"`

	// Error settings.
	Message string   `yaml:"message,omitempty"`
	Types   []string `yaml:"types,omitempty"`

	// ExpectError declares that the step fails with an error whose message
	// contains this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Path is the target path (value, errors, event_*).
	Path string `yaml:"path,omitempty"`

	// Kind is the event kind for event_emitted and event_count.
	Kind string `yaml:"kind,omitempty"`

	// Expect is the expected value (value), error list (errors) or dirty
	// path list (dirty).
	Expect any `yaml:"expect,omitempty"`

	// Outcome is "success" or "failure" for submit; it checks the last
	// submit step.
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected event count (event_count) or submit count
	// (submit).
	Count int `yaml:"count,omitempty"`

	// Events is the expected order for event_order, as "kind:path".
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertValue        = "value"
	AssertErrors       = "errors"
	AssertDirty        = "dirty"
	AssertSubmit       = "submit"
	AssertEventEmitted = "event_emitted"
	AssertEventCount   = "event_count"
	AssertEventOrder   = "event_order"
)

// LoadScenario reads and parses a scenario YAML file, resolving the form
// path against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// the form path relative to basePath.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Form != "" && !filepath.IsAbs(scenario.Form) && basePath != "" {
		scenario.Form = filepath.Join(basePath, scenario.Form)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Form != "" {
		if len(s.Defaults) > 0 {
			return fmt.Errorf("defaults and form are mutually exclusive")
		}
		if _, err := os.Stat(s.Form); os.IsNotExist(err) {
			return fmt.Errorf("form file not found: %s", s.Form)
		}
	}

	if _, err := field.ParseMode(s.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Do {
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	case OpRegister:
		if st.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for register", index)
		}
		if _, err := field.ParseMode(st.Mode); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		fallthrough
	case OpUnregister, OpChange, OpBlur, OpSet, OpAppend, OpRemove:
		if st.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for %s", index, st.Do)
		}
	case OpSetError:
		if st.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for set_error", index)
		}
		if st.Message == "" {
			return fmt.Errorf("steps[%d]: message is required for set_error", index)
		}
	case OpReset:
		if _, err := parseBaseline(st.Baseline); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpSubmit, OpTrigger, OpClearErrors:
	default:
		return fmt.Errorf("steps[%d]: unknown operation %q", index, st.Do)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertValue:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for value", index)
		}
	case AssertErrors:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for errors", index)
		}
	case AssertDirty:
	case AssertSubmit:
		if a.Outcome != "" && a.Outcome != "success" && a.Outcome != "failure" {
			return fmt.Errorf("assertions[%d]: outcome must be success or failure, got %q", index, a.Outcome)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for submit", index)
		}
	case AssertEventEmitted, AssertEventCount:
		if a.Kind != EventChange && a.Kind != EventError {
			return fmt.Errorf("assertions[%d]: kind must be change or error for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
