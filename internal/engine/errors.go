package engine

import (
	"errors"
	"fmt"

	"github.com/slayermass/stateform/internal/value"
)

// ConfigError reports a misuse of the engine API: an unknown field type, an
// unparsable path, a value that cannot be represented.
//
// In production mode unknown field types are logged instead of returned and
// the offending registration becomes a no-op.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Path is the path argument as the caller passed it.
	Path string

	// Type is the field type name, for ErrCodeUnknownType.
	Type string

	// Err is the underlying cause.
	Err error
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeUnknownType means no validator is registered for a field type.
	ErrCodeUnknownType ConfigErrorCode = "UNKNOWN_FIELD_TYPE"

	// ErrCodeInvalidPath means a path string failed to parse.
	ErrCodeInvalidPath ConfigErrorCode = "INVALID_PATH"

	// ErrCodeInvalidValue means a Go value has no tree representation, or
	// a write could not be applied at the path.
	ErrCodeInvalidValue ConfigErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidDefaults means the defaults passed to New are not an
	// object.
	ErrCodeInvalidDefaults ConfigErrorCode = "INVALID_DEFAULTS"
)

func (e *ConfigError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("%s: field %q type %q: %v", e.Code, e.Path, e.Type, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: path %q: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUnknownTypeError reports whether err is a ConfigError for an unknown
// field type.
func IsUnknownTypeError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnknownType
	}
	return false
}

// TypeMismatchError is returned in strict mode when a write to a required
// field carries a value its type does not accept. The tree is untouched.
type TypeMismatchError struct {
	Path string
	Type string
	Got  value.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q of type %q cannot hold a %s value", e.Path, e.Type, e.Got)
}

// IsTypeMismatchError reports whether err wraps a TypeMismatchError.
func IsTypeMismatchError(err error) bool {
	var te *TypeMismatchError
	return errors.As(err, &te)
}

func invalidPath(p string, err error) error {
	return &ConfigError{Code: ErrCodeInvalidPath, Path: p, Err: err}
}

func invalidValue(p string, err error) error {
	return &ConfigError{Code: ErrCodeInvalidValue, Path: p, Err: err}
}
