package engine

import (
	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// trigger is what caused a validation pass.
type trigger int

const (
	triggerChange   trigger = iota // user edit
	triggerBlur                    // focus left
	triggerExplicit                // Trigger, submit or WithTrigger
	triggerRegister                // automatic pass after Register
)

func (t trigger) String() string {
	switch t {
	case triggerChange:
		return "change"
	case triggerBlur:
		return "blur"
	case triggerExplicit:
		return "trigger"
	case triggerRegister:
		return "register"
	}
	return "unknown"
}

// forced passes run regardless of the field's mode.
func (t trigger) forced() bool {
	return t == triggerExplicit || t == triggerRegister
}

// interactive passes mark the field touched.
func (t trigger) interactive() bool {
	return t == triggerChange || t == triggerBlur
}

func modeMatches(m Mode, t trigger) bool {
	switch m {
	case field.ModeChange:
		return t == triggerChange
	case field.ModeBlur:
		return t == triggerBlur
	case field.ModeAll:
		return t == triggerChange || t == triggerBlur
	}
	return false
}

type validateOptions struct {
	// skipElements stops recursion into array elements, for list-helper
	// appends whose new elements register themselves.
	skipElements bool
}

// validatePath validates the field at p, or every field reachable below p
// when p holds a container without its own whole-value descriptor.
func (e *Engine) validatePath(p path.Path, t trigger, opts validateOptions) error {
	v, _ := path.Get(e.current, p)
	d, registered := e.fields.Lookup(p)

	var kind validator.Kind
	if registered {
		k, err := e.kinds.Lookup(d.Type)
		if err != nil {
			return e.configError(&ConfigError{Code: ErrCodeUnknownType, Path: d.Key(), Type: d.Type, Err: err})
		}
		kind = k
	}

	switch n := v.(type) {
	case value.Array:
		if kind == nil || !validator.IsWholeValue(kind) {
			if opts.skipElements {
				return nil
			}
			return e.validateElements(p, n, t)
		}
	case value.Object:
		if kind == nil {
			for _, k := range n.SortedKeys() {
				if err := e.validatePath(p.Key(k), t, opts); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if !registered || !d.Active {
		return nil
	}
	e.validateField(d, kind, v, t)
	return nil
}

// validateElements recurses into each element of an array: object elements
// by key, nested arrays by index, scalars at their own index.
func (e *Engine) validateElements(p path.Path, arr value.Array, t trigger) error {
	for i, elem := range arr {
		ip := p.Index(i)
		switch el := elem.(type) {
		case value.Object:
			for _, k := range el.SortedKeys() {
				if err := e.validatePath(ip.Key(k), t, validateOptions{}); err != nil {
					return err
				}
			}
		case value.Array:
			for j := range el {
				if err := e.validatePath(ip.Index(j), t, validateOptions{}); err != nil {
					return err
				}
			}
		default:
			if err := e.validatePath(ip, t, validateOptions{}); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateField runs one descriptor's checks and publishes its errors.
//
// A first interaction outside the field's mode still refreshes and reveals
// whatever the registration pass left suppressed, so it never shows a stale
// result.
func (e *Engine) validateField(d *field.Descriptor, kind validator.Kind, v value.Value, t trigger) {
	key := d.Key()
	if t.interactive() {
		d.Touched = true
	}

	if !t.forced() && !modeMatches(d.EffectiveMode(e.mode), t) {
		if !hasSuppressed(e.errors.All(key)) {
			return
		}
		e.errors.ReplaceType(key, errstore.TypeValidate, check(d, kind, v, false))
		e.errors.Reveal(key)
		e.emitErrors(d.Path)
		return
	}

	suppressed := t == triggerRegister && !d.Touched
	entries := check(d, kind, v, suppressed)
	e.errors.ReplaceType(key, errstore.TypeValidate, entries)
	if t != triggerRegister {
		e.errors.Reveal(key)
	}

	e.logger.Debug("field validated",
		"path", key,
		"type", d.Type,
		"trigger", t.String(),
		"errors", len(entries))
	e.emitErrors(d.Path)
}

func hasSuppressed(entries []errstore.Entry) bool {
	for _, en := range entries {
		if en.Suppressed {
			return true
		}
	}
	return false
}

// check produces the validation entries for one value.
func check(d *field.Descriptor, kind validator.Kind, v value.Value, suppressed bool) []errstore.Entry {
	opts := d.Options
	if opts.Disabled {
		return nil
	}

	set := kind.IsSet(v)
	if opts.Required && !set {
		return []errstore.Entry{{
			Type:       errstore.TypeValidate,
			Message:    validator.MessageRequired,
			Suppressed: suppressed,
		}}
	}

	var entries []errstore.Entry
	for _, issue := range kind.Validate(v, opts.Options, set) {
		entries = append(entries, errstore.Entry{
			Type:       errstore.TypeValidate,
			Message:    issue.Message(),
			Params:     issue.Params,
			Suppressed: suppressed,
		})
	}

	if opts.Validate != nil {
		if ok, msg := opts.Validate(value.Clone(v)); !ok {
			if msg == "" {
				msg = validator.MessagePrefix + validator.KeyInvalid
			}
			entries = append(entries, errstore.Entry{
				Type:       errstore.TypeValidate,
				Message:    msg,
				Suppressed: suppressed,
			})
		}
	}
	return entries
}

// emitErrors publishes the full error list at p on both notations.
// Suppressed entries are included and flagged.
func (e *Engine) emitErrors(p path.Path) {
	key := p.String()
	for _, variant := range p.Variants() {
		e.bus.Emit(bus.Event{Path: variant, Kind: bus.Error, Errors: e.errors.All(key)})
	}
}

// configError returns err, or logs it and returns nil in production mode.
func (e *Engine) configError(err *ConfigError) error {
	if e.prod {
		e.logger.Error("form configuration error", "code", err.Code, "path", err.Path, "type", err.Type, "error", err.Err)
		return nil
	}
	return err
}
