package validator

import (
	"github.com/slayermass/stateform/internal/value"
)

// Date is a calendar date or instant: a Date leaf or an ISO 8601 string.
type Date struct{}

func (Date) IsSet(v value.Value) bool {
	_, ok := asDate(v)
	return ok
}

func (Date) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	t, _ := asDate(v)
	return checkDateBounds(t, opts)
}

// DateRange is a two-element [start, end] array validated as a whole.
type DateRange struct{}

func (DateRange) WholeValue() bool { return true }

func (DateRange) IsSet(v value.Value) bool {
	arr, ok := v.(value.Array)
	if !ok || len(arr) != 2 {
		return false
	}
	_, startOK := asDate(arr[0])
	_, endOK := asDate(arr[1])
	return startOK && endOK
}

func (DateRange) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		arr, ok := v.(value.Array)
		if !ok {
			return blankOrInvalid(v)
		}
		// [] and [empty, empty] are "no value"; a half-filled range is not.
		for _, elem := range arr {
			if !isBlank(elem) {
				return Invalid()
			}
		}
		return nil
	}
	arr := v.(value.Array)
	start, _ := asDate(arr[0])
	end, _ := asDate(arr[1])
	if start.After(end) {
		return Fail(KeyDateRange)
	}
	if issues := checkDateBounds(start, opts); len(issues) > 0 {
		return issues
	}
	return checkDateBounds(end, opts)
}
