package validator

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/slayermass/stateform/internal/value"
)

// blankOrInvalid is the Validate result for a value IsSet rejected: blank
// input is simply "no value", anything else is malformed for the type.
func blankOrInvalid(v value.Value) []Issue {
	if isBlank(v) {
		return nil
	}
	return Invalid()
}

func isBlank(v value.Value) bool {
	switch val := v.(type) {
	case nil, value.Empty:
		return true
	case value.String:
		return strings.TrimSpace(string(val)) == ""
	}
	return false
}

// charCount counts user-perceived characters after NFC composition, so a
// decomposed "é" counts once.
func charCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

func checkLength(s string, opts Options) []Issue {
	n := charCount(s)
	if opts.MinLength != nil && n < *opts.MinLength {
		return Fail(KeyMinLength, "minLength", *opts.MinLength)
	}
	if opts.MaxLength != nil && n > *opts.MaxLength {
		return Fail(KeyMaxLength, "maxLength", *opts.MaxLength)
	}
	return nil
}

var patterns sync.Map // string -> *regexp.Regexp

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patterns.Store(expr, re)
	return re, nil
}

func checkPattern(s string, opts Options) []Issue {
	if opts.Pattern == "" {
		return nil
	}
	re, err := compilePattern(opts.Pattern)
	if err != nil {
		return Invalid()
	}
	if !re.MatchString(s) {
		return Fail(KeyPattern, "pattern", opts.Pattern)
	}
	return nil
}

// dateLayouts are the string forms accepted where a date is expected.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// asDate reads v as a non-zero instant: a Date leaf or a string in one of
// dateLayouts.
func asDate(v value.Value) (time.Time, bool) {
	switch val := v.(type) {
	case value.Date:
		return val.Time, !val.Time.IsZero()
	case value.String:
		s := strings.TrimSpace(string(val))
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func checkDateBounds(t time.Time, opts Options) []Issue {
	if opts.MinDate != nil && t.Before(*opts.MinDate) {
		return Fail(KeyMinDate, "minDate", formatDate(*opts.MinDate))
	}
	if opts.MaxDate != nil && t.After(*opts.MaxDate) {
		return Fail(KeyMaxDate, "maxDate", formatDate(*opts.MaxDate))
	}
	return nil
}

func sameChoice(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}

func inChoices(s string, choices []string) bool {
	for _, c := range choices {
		if sameChoice(s, c) {
			return true
		}
	}
	return false
}
