package validator

import (
	"github.com/slayermass/stateform/internal/value"
)

// Checkbox is a boolean. Only a checked box counts as set, so a required
// checkbox must be ticked.
type Checkbox struct{}

func (Checkbox) IsSet(v value.Value) bool {
	b, ok := v.(value.Bool)
	return ok && bool(b)
}

func (Checkbox) Validate(v value.Value, _ Options, _ bool) []Issue {
	switch v.(type) {
	case value.Bool, value.Empty, nil:
		return nil
	}
	return Invalid()
}

// Select is one string out of Choices. An empty Choices list accepts any
// non-blank string.
type Select struct{}

func (Select) IsSet(v value.Value) bool {
	return Text{}.IsSet(v)
}

func (Select) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	s := string(v.(value.String))
	if len(opts.Choices) > 0 && !inChoices(s, opts.Choices) {
		return Fail(KeyOneOf, "choices", opts.Choices)
	}
	return nil
}

// MultiSelect is an array of strings drawn from Choices, validated as a whole.
type MultiSelect struct{}

func (MultiSelect) WholeValue() bool { return true }

func (MultiSelect) IsSet(v value.Value) bool {
	arr, ok := v.(value.Array)
	if !ok || len(arr) == 0 {
		return false
	}
	for _, elem := range arr {
		if _, ok := elem.(value.String); !ok {
			return false
		}
	}
	return true
}

func (MultiSelect) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		if arr, ok := v.(value.Array); ok && len(arr) == 0 {
			return nil
		}
		return blankOrInvalid(v)
	}
	arr := v.(value.Array)
	if len(opts.Choices) > 0 {
		for _, elem := range arr {
			if !inChoices(string(elem.(value.String)), opts.Choices) {
				return Fail(KeyOneOf, "choices", opts.Choices)
			}
		}
	}
	if opts.MinItems != nil && len(arr) < *opts.MinItems {
		return Fail(KeyMinItems, "minItems", *opts.MinItems)
	}
	if opts.MaxItems != nil && len(arr) > *opts.MaxItems {
		return Fail(KeyMaxItems, "maxItems", *opts.MaxItems)
	}
	return nil
}
