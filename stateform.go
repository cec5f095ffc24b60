// Package stateform is a headless form-state engine: a value tree with
// initial and current snapshots, per-field validation under configurable
// trigger modes, an error store and path-keyed change notifications.
//
// Create an engine with defaults, register fields and drive it with user
// interactions:
//
//	f, err := stateform.New(map[string]any{"email": ""})
//	if err != nil {
//		return err
//	}
//	err = f.Register("email", "email", stateform.FieldOptions{
//		Options: stateform.Options{Required: true},
//	})
//	sub := f.Subscribe("email")
//	sub.OnError(func(errs []stateform.ErrorEntry) { ... })
//	err = f.OnChange("email", "ada@example.com")
//
// Forms can also be declared in CUE or HCL and built with LoadForm.
package stateform

import (
	"fmt"

	"github.com/slayermass/stateform/internal/engine"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/schema"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

type (
	Engine        = engine.Engine
	Option        = engine.Option
	FieldOptions  = engine.FieldOptions
	Options       = validator.Options
	Mode          = engine.Mode
	Status        = engine.Status
	SetOption     = engine.SetOption
	ResetOptions  = engine.ResetOptions
	Baseline      = engine.Baseline
	ListMeta      = engine.ListMeta
	SuccessFunc   = engine.SuccessFunc
	FailureFunc   = engine.FailureFunc
	ErrorEntry    = errstore.Entry
	Value         = value.Value
	ConfigError   = engine.ConfigError
	Registry      = validator.Registry
	ValidatorKind = validator.Kind
)

const (
	ModeChange = engine.ModeChange
	ModeBlur   = engine.ModeBlur
	ModeSubmit = engine.ModeSubmit
	ModeAll    = engine.ModeAll

	BaselineKeep    = engine.BaselineKeep
	BaselineMerge   = engine.BaselineMerge
	BaselineReplace = engine.BaselineReplace
)

var (
	WithLogger        = engine.WithLogger
	WithMode          = engine.WithMode
	WithRegistry      = engine.WithRegistry
	WithIDGenerator   = engine.WithIDGenerator
	WithStrictTypes   = engine.WithStrictTypes
	WithProduction    = engine.WithProduction
	WithMaxDrainSteps = engine.WithMaxDrainSteps
	WithObserver      = engine.WithObserver

	WithTrigger = engine.WithTrigger
	WithMerge   = engine.WithMerge

	IsConfigError       = engine.IsConfigError
	IsUnknownTypeError  = engine.IsUnknownTypeError
	IsTypeMismatchError = engine.IsTypeMismatchError
	IsDrainLimitError   = engine.IsDrainLimitError
)

// New creates a form engine seeded with defaults.
func New(defaults any, opts ...Option) (*Engine, error) {
	return engine.New(defaults, opts...)
}

// Validators returns a registry holding every built-in field type, ready
// for custom kinds to be added and passed to WithRegistry.
func Validators() *Registry {
	return validator.Builtins()
}

// LoadForm reads a .cue or .hcl definition file, validates the named form
// (or the only one when name is empty) and builds an engine from it.
func LoadForm(filename, name string, opts ...Option) (*Engine, error) {
	forms, err := schema.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	form, err := schema.Find(forms, name)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(form, nil); len(errs) > 0 {
		return nil, fmt.Errorf("form %s: %w", form.Name, errs[0])
	}
	return schema.Build(form, opts...)
}
