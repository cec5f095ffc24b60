package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrUnknownKind is returned by Lookup for a type name nobody registered.
var ErrUnknownKind = errors.New("no validator registered for field type")

// Registry maps field type names to kinds. It is populated at startup and
// read-only afterwards.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds a kind under name. Registering the same name twice is a
// programming error and panics.
func (r *Registry) Register(name string, k Kind) {
	if _, exists := r.kinds[name]; exists {
		panic(fmt.Sprintf("validator for field type '%s' already registered", name))
	}
	slog.Debug("Registering validator kind.", "type", name, "whole_value", IsWholeValue(k))
	r.kinds[name] = k
}

// Lookup returns the kind for name, or an error wrapping ErrUnknownKind.
func (r *Registry) Lookup(name string) (Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.kinds[name]
	return ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns a registry holding every built-in kind.
func Builtins() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in kinds to r.
func RegisterBuiltins(r *Registry) {
	r.Register("text", Text{})
	r.Register("textarea", Text{})
	r.Register("password", Password{})
	r.Register("email", Email{})
	r.Register("phone", Phone{})
	r.Register("richtext", RichText{})
	r.Register("number", Number{})
	r.Register("bigint", BigInt{})
	r.Register("checkbox", Checkbox{})
	r.Register("select", Select{})
	r.Register("multiselect", MultiSelect{})
	r.Register("date", Date{})
	r.Register("daterange", DateRange{})
}
