// Package validator holds the per-type validation contract and the registry
// that dispatches on a field's declared type name.
//
// A Kind answers two questions about a value: is it a present, well-formed
// instance of the type (IsSet), and does it satisfy the field's options
// (Validate). Required handling, disabled fields and custom predicates are
// the orchestrator's job, not the Kind's.
package validator

import (
	"time"

	"github.com/slayermass/stateform/internal/value"
)

// Kind validates one field type.
type Kind interface {
	// IsSet reports whether v is a present, well-formed value of this type.
	IsSet(v value.Value) bool

	// Validate checks v against opts. hasValidValue is the IsSet result for
	// v; kinds skip range checks when it is false. A nil or empty result
	// means valid.
	Validate(v value.Value, opts Options, hasValidValue bool) []Issue
}

// WholeValue is implemented by kinds whose value is an array that must be
// validated as one unit (a date range, a multi-select) instead of element by
// element.
type WholeValue interface {
	WholeValue() bool
}

// IsWholeValue reports whether k declares whole-array semantics.
func IsWholeValue(k Kind) bool {
	wv, ok := k.(WholeValue)
	return ok && wv.WholeValue()
}

// Issue is one failed check: a message key plus interpolation params.
type Issue struct {
	Key    string
	Params map[string]any
}

// Issue keys shared by the built-in kinds.
const (
	KeyInvalid   = "invalid"
	KeyMin       = "min"
	KeyMax       = "max"
	KeyInteger   = "integer"
	KeyMinLength = "minLength"
	KeyMaxLength = "maxLength"
	KeyPattern   = "pattern"
	KeyEmail     = "email"
	KeyPhone     = "phone"
	KeyMinDate   = "minDate"
	KeyMaxDate   = "maxDate"
	KeyDateRange = "dateRange"
	KeyOneOf     = "oneOf"
	KeyMinItems  = "minItems"
	KeyMaxItems  = "maxItems"
)

// MessagePrefix namespaces issue keys into message keys.
const MessagePrefix = "common.validation."

// MessageRequired is the message recorded when a required field is unset.
const MessageRequired = "required"

// Invalid is the generic failure.
func Invalid() []Issue {
	return []Issue{{Key: KeyInvalid}}
}

// Fail builds a single-issue result. kv are alternating param names and
// values.
//
//	return validator.Fail(validator.KeyMinLength, "minLength", 5)
func Fail(key string, kv ...any) []Issue {
	issue := Issue{Key: key}
	if len(kv) > 0 {
		issue.Params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			name, ok := kv[i].(string)
			if !ok {
				continue
			}
			issue.Params[name] = kv[i+1]
		}
	}
	return []Issue{issue}
}

// Message renders the message key for an issue.
func (i Issue) Message() string {
	return MessagePrefix + i.Key
}

// CustomFunc is a caller-supplied predicate evaluated after the built-in
// checks. ok=false with an empty message records the generic invalid message;
// a non-empty message is recorded verbatim.
type CustomFunc func(v value.Value) (ok bool, message string)

// Options are the per-field validation settings passed through to kinds.
// Pointer fields distinguish "unset" from zero.
type Options struct {
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Integer bool     `json:"integer,omitempty" yaml:"integer,omitempty"`

	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	MinItems *int     `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems *int     `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Choices  []string `json:"choices,omitempty" yaml:"choices,omitempty"`

	MinDate *time.Time `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate *time.Time `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`

	Validate CustomFunc `json:"-" yaml:"-"`
}

// Float returns a pointer to f, for option literals.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n, for option literals.
func Int(n int) *int { return &n }

// Time returns a pointer to t, for option literals.
func Time(t time.Time) *time.Time { return &t }
