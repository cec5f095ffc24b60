package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slayermass/stateform/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Forms  int                      `json:"forms"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <forms-path>",
		Short: "Validate form definitions",
		Long: `Validate CUE or HCL form definitions without building an engine.

Checks that every field has a known type and a parseable, unique path,
that option bounds are ordered, patterns compile, and defaults agree with
the declared field paths. All problems are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, target string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadForms(target, LoadModeCollectAll)
	if loadResult == nil {
		code, message := firstLoadError(loadErrors)
		return outputValidateError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d form definition file(s) in %s", loadResult.FileCount, target)
	for _, f := range loadResult.Forms {
		formatter.VerboseLog("Validating form: %s", f.Name)
	}

	validationErrors := ValidateForms(loadResult.Forms)
	for _, err := range loadErrors {
		le := &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		errors.As(err, &le)
		validationErrors = append(validationErrors, schema.ValidationError{
			Field:   "load",
			Message: le.Message,
			Code:    le.Code,
			Line:    le.Pos.Line,
		})
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}
	return outputValidateSuccess(formatter, len(loadResult.Forms))
}

// ValidateForms checks forms against the built-in field types.
func ValidateForms(forms []*schema.Form) []schema.ValidationError {
	return schema.ValidateAll(forms, nil)
}

func outputValidateSuccess(formatter *OutputFormatter, forms int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Forms: forms})
	}

	fmt.Fprintf(formatter.Writer, "✓ All forms valid (%d)\n", forms)
	return nil
}

// outputValidateError outputs a command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
