package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// Validation error codes (E200-E299)
const (
	ErrFormNameEmpty     = "E201" // form name is required
	ErrFormNoFields      = "E202" // at least one field required
	ErrFieldNoType       = "E203" // field type is required
	ErrUnknownFieldType  = "E204" // no validator registered for type
	ErrInvalidFieldPath  = "E205" // path does not parse or is the root
	ErrDuplicateField    = "E206" // two declarations for one canonical path
	ErrInvertedBounds    = "E207" // min above max (any bound pair)
	ErrInvalidPattern    = "E208" // pattern is not a valid regular expression
	ErrDefaultsShape     = "E209" // defaults hold a scalar above a field path
	ErrDuplicateFormName = "E210" // two forms share a name
)

// ValidationError represents a form definition problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateAll validates each form and checks names are unique.
// Returns all errors found (does not fail-fast).
func ValidateAll(forms []*Form, kinds *validator.Registry) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, f := range forms {
		if f.Name != "" && seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   "form",
				Message: fmt.Sprintf("duplicate form name: %q", f.Name),
				Code:    ErrDuplicateFormName,
				Line:    f.Pos.Line,
			})
		}
		seen[f.Name] = true
		errs = append(errs, Validate(f, kinds)...)
	}
	return errs
}

// Validate checks one form against kinds (validator.Builtins() when nil).
// Returns all errors found (does not fail-fast).
func Validate(form *Form, kinds *validator.Registry) []ValidationError {
	if kinds == nil {
		kinds = validator.Builtins()
	}
	var errs []ValidationError

	// E201: name is required
	if strings.TrimSpace(form.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "form name is required and must be non-empty",
			Code:    ErrFormNameEmpty,
			Line:    form.Pos.Line,
		})
	}

	// E202: at least one field
	if len(form.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   "fields",
			Message: "at least one field is required",
			Code:    ErrFormNoFields,
			Line:    form.Pos.Line,
		})
	}

	seen := make(map[string]int)
	for i, f := range form.Fields {
		at := fmt.Sprintf("fields[%d]", i)
		line := f.Pos.Line

		if f.Type == "" {
			errs = append(errs, ValidationError{Field: at + ".type", Message: "field type is required", Code: ErrFieldNoType, Line: line})
		} else if !kinds.Has(f.Type) {
			errs = append(errs, ValidationError{
				Field:   at + ".type",
				Message: fmt.Sprintf("unknown field type %q (known: %s)", f.Type, strings.Join(kinds.Names(), ", ")),
				Code:    ErrUnknownFieldType,
				Line:    line,
			})
		}

		p, err := path.Parse(f.Path)
		if err != nil || p.IsRoot() {
			msg := "the root cannot be a field"
			if err != nil {
				msg = err.Error()
			}
			errs = append(errs, ValidationError{Field: at + ".path", Message: msg, Code: ErrInvalidFieldPath, Line: line})
			continue
		}

		key := p.String()
		if first, dup := seen[key]; dup {
			errs = append(errs, ValidationError{
				Field:   at + ".path",
				Message: fmt.Sprintf("duplicate field %q (first declared at fields[%d])", key, first),
				Code:    ErrDuplicateField,
				Line:    line,
			})
		} else {
			seen[key] = i
		}

		errs = append(errs, validateBounds(at, line, f.Options)...)

		if f.Options.Pattern != "" {
			if _, err := regexp.Compile(f.Options.Pattern); err != nil {
				errs = append(errs, ValidationError{Field: at + ".pattern", Message: err.Error(), Code: ErrInvalidPattern, Line: line})
			}
		}

		if blocker, ok := scalarAbove(form.Defaults, p); ok {
			errs = append(errs, ValidationError{
				Field:   at + ".path",
				Message: fmt.Sprintf("defaults hold a %s at %q, so %q cannot be nested under it", value.KindOf(blocker.v), blocker.at, key),
				Code:    ErrDefaultsShape,
				Line:    line,
			})
		}
	}

	return errs
}

func validateBounds(at string, line int, o validator.Options) []ValidationError {
	var errs []ValidationError
	inverted := func(name string) {
		errs = append(errs, ValidationError{
			Field:   at + "." + name,
			Message: fmt.Sprintf("%s lower bound is above its upper bound", name),
			Code:    ErrInvertedBounds,
			Line:    line,
		})
	}
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		inverted("min/max")
	}
	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		inverted("minLength/maxLength")
	}
	if o.MinItems != nil && o.MaxItems != nil && *o.MinItems > *o.MaxItems {
		inverted("minItems/maxItems")
	}
	if o.MinDate != nil && o.MaxDate != nil && o.MinDate.After(*o.MaxDate) {
		inverted("minDate/maxDate")
	}
	return errs
}

type located struct {
	at string
	v  value.Value
}

// scalarAbove reports the first default on the way down to p (excluding p
// itself) that p cannot be nested under: a non-empty scalar, or an array
// addressed by a non-index key.
func scalarAbove(defaults value.Object, p path.Path) (located, bool) {
	var node value.Value = defaults
	for i := 0; i < len(p)-1; i++ {
		next, ok := path.Get(node, p[i:i+1])
		if !ok {
			return located{}, false
		}
		_, arr := next.(value.Array)
		_, idx := path.Index(p[i+1])
		if (!value.IsContainer(next) && !value.IsEmpty(next)) || (arr && !idx) {
			return located{at: p[:i+1].String(), v: next}, true
		}
		node = next
	}
	return located{}, false
}
