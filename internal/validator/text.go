package validator

import (
	"html"
	"regexp"
	"strings"

	"github.com/slayermass/stateform/internal/value"
)

// Text is a single- or multi-line string. Blank (whitespace-only) text is
// not set.
type Text struct{}

func (Text) IsSet(v value.Value) bool {
	s, ok := v.(value.String)
	return ok && strings.TrimSpace(string(s)) != ""
}

func (Text) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	s := string(v.(value.String))
	if issues := checkLength(s, opts); len(issues) > 0 {
		return issues
	}
	return checkPattern(s, opts)
}

// Password is like Text but whitespace counts as content.
type Password struct{}

func (Password) IsSet(v value.Value) bool {
	s, ok := v.(value.String)
	return ok && s != ""
}

func (Password) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		if _, ok := v.(value.String); ok || value.IsEmpty(v) {
			return nil
		}
		return Invalid()
	}
	s := string(v.(value.String))
	if issues := checkLength(s, opts); len(issues) > 0 {
		return issues
	}
	return checkPattern(s, opts)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a syntactically plausible address.
type Email struct{}

func (Email) IsSet(v value.Value) bool {
	return Text{}.IsSet(v)
}

func (Email) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	s := strings.TrimSpace(string(v.(value.String)))
	if !emailPattern.MatchString(s) {
		return Fail(KeyEmail)
	}
	return checkLength(s, opts)
}

// Phone accepts an optional leading "+" and 7 to 15 digits, ignoring spaces,
// dashes, dots and parentheses.
type Phone struct{}

func (Phone) IsSet(v value.Value) bool {
	return Text{}.IsSet(v)
}

func (Phone) Validate(v value.Value, _ Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	s := strings.TrimSpace(string(v.(value.String)))
	s = strings.TrimPrefix(s, "+")
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return Fail(KeyPhone)
		}
	}
	if digits < 7 || digits > 15 {
		return Fail(KeyPhone)
	}
	return nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// RichText is HTML markup. Presence and length are judged on the visible
// text with tags stripped and entities decoded.
type RichText struct{}

// PlainText strips markup from an HTML fragment.
func PlainText(markup string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(markup, "")))
}

func (RichText) IsSet(v value.Value) bool {
	s, ok := v.(value.String)
	return ok && PlainText(string(s)) != ""
}

func (RichText) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		if _, ok := v.(value.String); ok {
			return nil
		}
		return blankOrInvalid(v)
	}
	return checkLength(PlainText(string(v.(value.String))), opts)
}
