package engine

import (
	"fmt"
	"sort"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/diff"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/value"
)

// SetOption modifies a single write.
type SetOption func(*setConfig)

type setConfig struct {
	trigger bool
	merge   bool
}

// WithTrigger validates the written path (and everything under it) as an
// explicit trigger once the write is applied.
func WithTrigger() SetOption {
	return func(c *setConfig) {
		c.trigger = true
	}
}

// WithMerge deep-merges an object value into the existing object at the
// path instead of replacing it. Arrays and scalars are still replaced.
func WithMerge() SetOption {
	return func(c *setConfig) {
		c.merge = true
	}
}

func newSetConfig(opts []SetOption) setConfig {
	var c setConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// write is a parsed, converted pending mutation.
type write struct {
	raw  string
	path path.Path
	val  value.Value
}

func (e *Engine) prepare(p string, v any) (write, error) {
	pp, err := path.Parse(p)
	if err != nil {
		return write{}, invalidPath(p, err)
	}
	val, err := value.FromAny(v)
	if err != nil {
		return write{}, invalidValue(p, err)
	}
	if pp.IsRoot() {
		if _, ok := val.(value.Object); !ok {
			return write{}, invalidValue(p, fmt.Errorf("root value must be an object, got %s", value.KindOf(val)))
		}
	}
	return write{raw: p, path: pp, val: val}, nil
}

// checkStrict enforces WithStrictTypes for a pending write.
func (e *Engine) checkStrict(w write) error {
	if !e.strict {
		return nil
	}
	d, ok := e.fields.Lookup(w.path)
	if !ok || !d.Options.Required {
		return nil
	}
	kind, err := e.kinds.Lookup(d.Type)
	if err != nil {
		return nil
	}
	if !kind.IsSet(w.val) {
		return &TypeMismatchError{Path: d.Key(), Type: d.Type, Got: value.KindOf(w.val)}
	}
	return nil
}

// apply runs the mutation pipeline for one write and returns the changed
// paths. Nothing is emitted when the tree did not change.
func (e *Engine) apply(w write, merge bool) ([]path.Path, error) {
	before := value.Clone(e.current)

	next := w.val
	if merge {
		existing, _ := path.Get(e.current, w.path)
		next = mergeValues(existing, w.val)
	}

	root, err := path.Set(e.current, w.path, next)
	if err != nil {
		return nil, invalidValue(w.raw, err)
	}
	e.current = root

	changes := diff.Changes(before, e.current)
	e.recomputeDirty()
	if len(changes) == 0 {
		return nil, nil
	}
	e.emitChanges(changes)
	return changes, nil
}

// emitChanges delivers one change event per changed path and notation,
// followed by the whole-form event.
func (e *Engine) emitChanges(changes []path.Path) {
	for _, p := range changes {
		e.emitChange(p)
	}
	e.emitForm()
}

func (e *Engine) emitChange(p path.Path) {
	v, _ := path.Get(e.current, p)
	for _, key := range p.Variants() {
		e.bus.Emit(bus.Event{Path: key, Kind: bus.Change, Value: value.Clone(v)})
	}
}

func (e *Engine) emitForm() {
	e.bus.Emit(bus.Event{Path: bus.FormKey, Kind: bus.Change, Value: value.Clone(e.current)})
}

// mergeValues deep-merges patch into base. Only object-into-object merges;
// anything else is replaced by patch.
func mergeValues(base, patch value.Value) value.Value {
	bo, ok := base.(value.Object)
	po, ok2 := patch.(value.Object)
	if !ok || !ok2 {
		return patch
	}
	out := value.CloneObject(bo)
	for k, pv := range po {
		out[k] = mergeValues(out[k], pv)
	}
	return out
}

// SetValue writes v at p programmatically. It does not mark the field
// touched; pass WithTrigger to validate afterwards.
func (e *Engine) SetValue(p string, v any, opts ...SetOption) error {
	w, err := e.prepare(p, v)
	if err != nil {
		return err
	}
	cfg := newSetConfig(opts)
	return e.unit(func() error {
		return e.setValue(w, cfg)
	})
}

func (e *Engine) setValue(w write, cfg setConfig) error {
	if err := e.checkStrict(w); err != nil {
		return err
	}
	if _, err := e.apply(w, cfg.merge); err != nil {
		return err
	}
	if cfg.trigger {
		return e.validatePath(w.path, triggerExplicit, validateOptions{})
	}
	return nil
}

// SetValues applies several writes as one unit of work, in sorted path
// order. Nothing is written if any path or value is invalid, or if any write
// fails WithStrictTypes.
func (e *Engine) SetValues(values map[string]any, opts ...SetOption) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writes := make([]write, 0, len(keys))
	for _, k := range keys {
		w, err := e.prepare(k, values[k])
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	cfg := newSetConfig(opts)
	return e.unit(func() error {
		for _, w := range writes {
			if err := e.checkStrict(w); err != nil {
				return err
			}
		}
		for _, w := range writes {
			if err := e.setValue(w, cfg); err != nil {
				return err
			}
		}
		return nil
	})
}

// OnChange records a user edit: it writes v at p, marks the field touched
// and validates it if the field's mode includes change.
func (e *Engine) OnChange(p string, v any, opts ...SetOption) error {
	w, err := e.prepare(p, v)
	if err != nil {
		return err
	}
	cfg := newSetConfig(opts)
	return e.unit(func() error {
		if err := e.checkStrict(w); err != nil {
			return err
		}
		if _, err := e.apply(w, cfg.merge); err != nil {
			return err
		}
		t := triggerChange
		if cfg.trigger {
			t = triggerExplicit
		}
		return e.validatePath(w.path, t, validateOptions{})
	})
}

// OnBlur records that focus left the field at p.
func (e *Engine) OnBlur(p string) error {
	pp, err := path.Parse(p)
	if err != nil {
		return invalidPath(p, err)
	}
	return e.unit(func() error {
		return e.validatePath(pp, triggerBlur, validateOptions{})
	})
}
