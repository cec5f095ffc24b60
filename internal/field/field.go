// Package field tracks per-path metadata for registered form fields.
package field

import (
	"fmt"

	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// Mode selects which interaction re-validates a field.
type Mode string

const (
	ModeDefault Mode = ""       // inherit the engine's mode
	ModeChange  Mode = "change" // validate on every change
	ModeBlur    Mode = "blur"   // validate when focus leaves
	ModeSubmit  Mode = "submit" // validate only on submit or explicit trigger
	ModeAll     Mode = "all"    // change and blur
)

// ParseMode validates a mode name. The empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDefault, ModeChange, ModeBlur, ModeSubmit, ModeAll:
		return m, nil
	}
	return "", fmt.Errorf("unknown validation mode %q (want change, blur, submit or all)", s)
}

// Options is everything a caller passes to register a field. The embedded
// validator options go to the field's kind untouched.
type Options struct {
	validator.Options

	// Mode overrides the engine-wide validation mode for this field.
	Mode Mode
	// Persist keeps value, metadata and errors across Unregister.
	Persist bool
	// Transform rewrites the current value once, at registration, before it
	// seeds the initial snapshot.
	Transform func(value.Value) value.Value
	// Handle is an opaque reference owned by the UI binding.
	Handle any
}

// Descriptor is the live metadata for one registered path.
type Descriptor struct {
	ID      string
	Path    path.Path
	Type    string
	Active  bool
	Options Options
	IsDirty bool
	// Touched is set by the first change or blur. Until then, errors from
	// the registration pass stay suppressed.
	Touched bool
}

// Key is the canonical registry key for the descriptor's path.
func (d *Descriptor) Key() string {
	return d.Path.String()
}

// EffectiveMode resolves ModeDefault against fallback.
func (d *Descriptor) EffectiveMode(fallback Mode) Mode {
	if d.Options.Mode != ModeDefault {
		return d.Options.Mode
	}
	if fallback == ModeDefault {
		return ModeChange
	}
	return fallback
}
