package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/engine"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/schema"
	"github.com/slayermass/stateform/internal/value"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Form string // form name, required when the file defines several
}

// CheckResult is the outcome of submitting a values document.
type CheckResult struct {
	Form   string                      `json:"form"`
	Valid  bool                        `json:"valid"`
	Status engine.Status               `json:"status"`
	Errors map[string][]errstore.Entry `json:"errors,omitempty"`
	Dirty  []string                    `json:"dirty,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <form-file> <values.json>",
		Short: "Submit a values document against a form",
		Long: `Build an engine from a form definition, write every top-level key of
a JSON values document into it and submit.

Exit codes:
  0 - The values are valid
  1 - Submit reported errors (printed per path)
  2 - Command error (unreadable files, invalid form)

Examples:
  stateform check forms/signup.cue values.json
  stateform check forms/all.hcl values.json --form signup --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Form, "form", "", "form name (defaults to the only form in the file)")

	return cmd
}

func runCheck(opts *CheckOptions, formFile, valuesFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	form, code, err := loadCheckForm(formFile, opts.Form)
	if err != nil {
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code, err)
	}

	values, err := readValues(valuesFile)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid values document", err)
	}

	logger := opts.logger(formatter.GetErrWriter())
	engOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.Verbose {
		engOpts = append(engOpts, engine.WithObserver(bus.NewSlogObserver(logger)))
	}
	eng, err := schema.Build(form, engOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeFormInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build form", err)
	}

	result, err := submitValues(eng, form.Name, values)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to apply values", err)
	}

	if formatter.Format == "json" {
		return outputCheckJSON(formatter, result)
	}
	return outputCheckText(formatter, result)
}

// loadCheckForm returns the selected form, or the error code and cause.
func loadCheckForm(file, name string) (*schema.Form, string, error) {
	forms, err := schema.LoadFile(file)
	if err != nil {
		le := convertCompileError(err, file)
		return nil, le.Code, le
	}
	form, err := schema.Find(forms, name)
	if err != nil {
		return nil, ErrCodeNotFound, err
	}
	if errs := schema.Validate(form, nil); len(errs) > 0 {
		return nil, ErrCodeFormInvalid, errs[0]
	}
	return form, "", nil
}

func readValues(file string) (value.Object, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	v, err := value.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("%s: values must be a JSON object, got %s", file, value.KindOf(v))
	}
	return obj, nil
}

// submitValues writes each top-level key as one unit of work, then submits.
func submitValues(eng *engine.Engine, formName string, values value.Object) (CheckResult, error) {
	writes := make(map[string]any, len(values))
	for k, v := range values {
		writes[k] = v
	}
	if err := eng.SetValues(writes); err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{Form: formName}
	submit := eng.OnSubmit(
		func(value.Object, engine.Status) {
			result.Valid = true
		},
		func(errs map[string][]errstore.Entry) {
			result.Errors = errs
		},
	)
	if err := submit(); err != nil {
		return CheckResult{}, err
	}
	result.Status = eng.GetStatus()
	result.Dirty = eng.GetDirtyFields()
	return result, nil
}

func outputCheckJSON(formatter *OutputFormatter, result CheckResult) error {
	if result.Valid {
		return formatter.Success(result)
	}

	response := CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    "E_INVALID_VALUES",
			Message: fmt.Sprintf("%d path(s) with errors", len(result.Errors)),
		},
	}
	if err := writeJSON(formatter.Writer, response); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d path(s) with errors", len(result.Errors)))
}

func outputCheckText(formatter *OutputFormatter, result CheckResult) error {
	w := formatter.Writer
	if result.Valid {
		fmt.Fprintf(w, "✓ %s: values valid\n", result.Form)
		if len(result.Dirty) > 0 {
			formatter.VerboseLog("Dirty fields: %v", result.Dirty)
		}
		return nil
	}

	fmt.Fprintf(w, "✗ %s: %d path(s) with errors\n\n", result.Form, len(result.Errors))
	for _, p := range sortedKeys(result.Errors) {
		fmt.Fprintf(w, "  %s\n", p)
		for _, e := range result.Errors[p] {
			fmt.Fprintf(w, "    %s (%s)\n", e.Message, e.Type)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d path(s) with errors", len(result.Errors)))
}

func sortedKeys(m map[string][]errstore.Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
