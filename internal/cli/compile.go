package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/schema"
	"github.com/slayermass/stateform/internal/value"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledForm is one form in canonical JSON, with its fingerprint.
type CompiledForm struct {
	Name        string          `json:"name"`
	Fields      int             `json:"fields"`
	Fingerprint string          `json:"fingerprint"`
	Definition  json.RawMessage `json:"definition"`
}

// CompilationResult holds the compiled forms.
type CompilationResult struct {
	Forms []CompiledForm `json:"forms"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <forms-path>",
		Short: "Compile form definitions to canonical JSON",
		Long: `Compile CUE or HCL form definitions to canonical JSON.

Every form is validated first. The output lists each form with its mode,
defaults and fields in declaration order, plus a fingerprint that changes
whenever the compiled definition does.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, target string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadForms(target, LoadModeCollectAll)
	if loadResult == nil {
		code, message := firstLoadError(loadErrors)
		return outputCompileError(formatter, code, message)
	}
	formatter.VerboseLog("Found %d form definition file(s) in %s", loadResult.FileCount, target)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	if errs := ValidateForms(loadResult.Forms); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result := &CompilationResult{Forms: make([]CompiledForm, 0, len(loadResult.Forms))}
	all := make(value.Array, 0, len(loadResult.Forms))
	for _, f := range loadResult.Forms {
		formatter.VerboseLog("Compiling form: %s", f.Name)
		def, err := CompileForm(f)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("form %s: %v", f.Name, err))
		}
		data, err := value.MarshalCanonical(def)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("form %s: %v", f.Name, err))
		}
		fp, err := value.Fingerprint(def)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("form %s: %v", f.Name, err))
		}
		result.Forms = append(result.Forms, CompiledForm{
			Name:        f.Name,
			Fields:      len(f.Fields),
			Fingerprint: fp,
			Definition:  data,
		})
		all = append(all, def)
	}

	if opts.Output != "" {
		if err := writeCanonicalFile(all, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// CompileForm converts a form to its canonical tree: name, mode, defaults
// and the ordered field list with their options.
func CompileForm(f *schema.Form) (value.Object, error) {
	mode := f.Mode
	if mode == field.ModeDefault {
		mode = field.ModeChange
	}

	fields := make(value.Array, 0, len(f.Fields))
	for _, fd := range f.Fields {
		opts, err := optionsTree(fd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Path, err)
		}
		entry := value.Object{
			"path":    value.String(fd.Path),
			"type":    value.String(fd.Type),
			"options": opts,
		}
		if fd.Mode != field.ModeDefault {
			entry["mode"] = value.String(fd.Mode)
		}
		if fd.Persist {
			entry["persist"] = value.Bool(true)
		}
		fields = append(fields, entry)
	}

	defaults := f.Defaults
	if defaults == nil {
		defaults = value.Object{}
	}
	return value.Object{
		"name":     value.String(f.Name),
		"mode":     value.String(mode),
		"defaults": value.CloneObject(defaults),
		"fields":   fields,
	}, nil
}

// optionsTree goes through the options' JSON form so the tree carries the
// same keys a values file or scenario would use.
func optionsTree(fd schema.Field) (value.Value, error) {
	data, err := json.Marshal(fd.Options)
	if err != nil {
		return nil, err
	}
	return value.FromJSON(data)
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d form(s)\n\n", len(result.Forms))
	for _, f := range result.Forms {
		fmt.Fprintf(formatter.Writer, "  %s: %d field(s), %s\n", f.Name, f.Fields, f.Fingerprint[:12])
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical JSON to %s\n", outputFile)
	}
	return nil
}

// outputCompileError outputs a command-level error (exit code 2).
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := firstLoadError([]error{err})
		cliErrors[i] = CLIError{Code: code, Message: message}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range cliErrors {
		fmt.Fprintf(formatter.Writer, "  %s\n\n", e.Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

func writeCanonicalFile(forms value.Array, filename string) error {
	data, err := value.MarshalCanonical(forms)
	if err != nil {
		return fmt.Errorf("marshaling forms: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
