package engine

import (
	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/value"
)

// Register declares a field at p with the given type and options.
//
// Registration guarantees the current tree has an entry at p, applies
// opts.Transform, seeds the baseline when it has no entry yet, emits the
// field's value so subscribers see it immediately, then runs a validation
// pass whose errors stay suppressed until the field is touched or a trigger
// forces them visible.
//
// Re-registering an existing path replaces its type and options but keeps
// its id and touched state.
func (e *Engine) Register(p string, fieldType string, opts FieldOptions) error {
	pp, err := path.Parse(p)
	if err != nil {
		return invalidPath(p, err)
	}
	if pp.IsRoot() {
		return invalidPath(p, errRootField)
	}
	if _, err := e.kinds.Lookup(fieldType); err != nil {
		return e.configError(&ConfigError{Code: ErrCodeUnknownType, Path: p, Type: fieldType, Err: err})
	}

	return e.unit(func() error {
		d, exists := e.fields.Lookup(pp)
		if !exists {
			d = &field.Descriptor{ID: e.ids.Generate(), Path: pp}
		}
		d.Type = fieldType
		d.Options = opts
		d.Active = true
		e.fields.Put(d)

		cur, has := path.Get(e.current, pp)
		if opts.Transform != nil {
			cur = opts.Transform(value.Clone(cur))
			if cur == nil {
				cur = value.Empty{}
			}
			has = false
		}
		if !has {
			root, err := path.Set(e.current, pp, cur)
			if err != nil {
				e.fields.Delete(d.Key())
				return invalidValue(p, err)
			}
			e.current = root
		}
		if !path.Has(e.initial, pp) {
			root, err := path.Set(e.initial, pp, value.Clone(cur))
			if err != nil {
				return invalidValue(p, err)
			}
			e.initial = root
		}

		e.logger.Debug("field registered",
			"path", d.Key(),
			"type", fieldType,
			"id", d.ID,
			"reregistered", exists)

		e.recomputeDirty()
		e.emitChange(pp)
		e.emitForm()

		return e.validatePath(pp, triggerRegister, validateOptions{})
	})
}

// Unregister removes the field at p. Unless the field persists, its
// descriptor, current value and errors are dropped silently; the baseline
// keeps its entry. Persistent fields only become inactive, so submit skips
// them.
func (e *Engine) Unregister(p string) {
	pp, err := path.Parse(p)
	if err != nil {
		return
	}
	d, ok := e.fields.Lookup(pp)
	if !ok {
		return
	}
	key := d.Key()

	if d.Options.Persist {
		d.Active = false
		e.logger.Debug("field deactivated", "path", key, "id", d.ID)
		return
	}

	e.fields.Delete(key)
	e.current = path.Unset(e.current, pp)
	e.errors.Clear(key)
	e.logger.Debug("field unregistered", "path", key, "id", d.ID)
}
