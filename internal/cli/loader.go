package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/slayermass/stateform/internal/schema"
)

// LoadMode controls how errors are handled during form loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the forms loaded from a file or directory.
type LoadResult struct {
	Forms     []*schema.Form
	FileCount int // Number of definition files found
}

// LoadError represents an error that occurred during form loading.
type LoadError struct {
	Code    string
	Message string
	Pos     schema.Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadForms loads every form definition at target, which is either a single
// .cue/.hcl file or a directory searched recursively.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadForms(target string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("forms path not found: %s", target)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing forms path: %v", err)}}
	}

	files := []string{target}
	if info.IsDir() {
		files, err = FindFormFiles(target)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no form definitions (.cue, .hcl) found in %s", target)}}
		}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, file := range files {
		forms, err := schema.LoadFile(file)
		if err != nil {
			errs = append(errs, convertCompileError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Forms = append(result.Forms, forms...)
	}

	if len(result.Forms) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no forms found in definitions"})
	}
	return result, errs
}

// FindFormFiles walks the directory and returns all .cue and .hcl file paths
// in lexical order.
func FindFormFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".cue", ".hcl":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a schema error to a LoadError with position info.
func convertCompileError(err error, file string) *LoadError {
	var compileErr *schema.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}

// firstLoadError returns the code and message of the first load error.
func firstLoadError(errs []error) (string, string) {
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	return ErrCodeGeneric, errs[0].Error()
}

// Error code constants - unified across all CLI commands.
// Form definition problems use the schema package's E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No form definition files found
	ErrCodeLoadFailed  = "E004" // Definition failed to parse or compile
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBadInput    = "E006" // Values document is not a JSON object
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeFormInvalid = "E008" // Form failed schema validation
	ErrCodeJournal     = "E009" // Journal open or query failed
)
