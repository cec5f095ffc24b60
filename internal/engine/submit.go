package engine

import (
	"errors"

	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/value"
)

var errRootField = errors.New("the root cannot be registered as a field")

// SuccessFunc receives a copy of the values on a valid submit.
type SuccessFunc func(values value.Object, status Status)

// FailureFunc receives the visible errors on an invalid submit.
type FailureFunc func(errs map[string][]errstore.Entry)

// Trigger validates the given paths, or every active field when none are
// given, regardless of mode. Errors it produces are visible.
func (e *Engine) Trigger(paths ...string) error {
	targets := make([]path.Path, 0, len(paths))
	for _, p := range paths {
		pp, err := path.Parse(p)
		if err != nil {
			return invalidPath(p, err)
		}
		targets = append(targets, pp)
	}
	return e.unit(func() error {
		if len(targets) == 0 {
			return e.triggerAll()
		}
		for _, p := range targets {
			if err := e.validatePath(p, triggerExplicit, validateOptions{}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) triggerAll() error {
	for _, d := range e.fields.Active() {
		if err := e.validatePath(d.Path, triggerExplicit, validateOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// OnSubmit returns a submit handler. Each call of the handler clears every
// error, validates all active fields, bumps the submit count and calls
// success with a copy of the values when no error remains, or failure with
// the visible errors otherwise. Either callback may be nil.
func (e *Engine) OnSubmit(success SuccessFunc, failure FailureFunc) func() error {
	return func() error {
		return e.unit(func() error {
			return e.submit(success, failure)
		})
	}
}

func (e *Engine) submit(success SuccessFunc, failure FailureFunc) error {
	cleared := e.errors.ClearAll()

	if err := e.triggerAll(); err != nil {
		return err
	}

	active := make(map[string]bool)
	for _, d := range e.fields.Active() {
		active[d.Key()] = true
	}
	for _, key := range cleared {
		if active[key] {
			continue
		}
		if p, err := path.Parse(key); err == nil {
			e.emitErrors(p)
		}
	}

	e.submitted = true
	e.submitCount++

	if e.errors.Len() == 0 {
		e.logger.Info("form submitted", "submit_count", e.submitCount)
		if success != nil {
			success(e.Values(), e.GetStatus())
		}
		return nil
	}

	e.logger.Info("form submit rejected",
		"submit_count", e.submitCount,
		"invalid_fields", e.errors.Len())
	if failure != nil {
		failure(e.errors.VisibleMap())
	}
	return nil
}

// Baseline selects what Reset does to the initial snapshot.
type Baseline int

const (
	// BaselineKeep leaves the initial snapshot alone.
	BaselineKeep Baseline = iota
	// BaselineMerge deep-merges the reset values into the snapshot.
	BaselineMerge
	// BaselineReplace makes the reset values the new snapshot.
	BaselineReplace
)

// ResetOptions configures Reset.
type ResetOptions struct {
	// Revalidate runs a visible validation pass over each reset leaf.
	Revalidate bool
	Baseline   Baseline
}

// Reset writes values (or the baseline when values is nil) back into the
// form one leaf at a time. Objects are walked; arrays and scalars are
// written whole. Each leaf loses its errors and touched state. The submit
// state is cleared.
func (e *Engine) Reset(values any, opts ResetOptions) error {
	var src value.Value
	if values == nil {
		src = value.Clone(e.initial)
	} else {
		v, err := value.FromAny(values)
		if err != nil {
			return invalidValue("", err)
		}
		src = v
	}
	obj, ok := src.(value.Object)
	if !ok {
		return invalidValue("", errResetNotObject)
	}

	return e.unit(func() error {
		switch opts.Baseline {
		case BaselineReplace:
			e.initial = value.Clone(obj)
		case BaselineMerge:
			e.initial = mergeValues(e.initial, value.Clone(obj))
		}

		for _, leaf := range leaves(path.Root(), obj) {
			v, _ := path.Get(obj, leaf)
			w := write{raw: leaf.String(), path: leaf, val: value.Clone(v)}
			if _, err := e.apply(w, false); err != nil {
				return err
			}
			e.resetMeta(leaf)
			if opts.Revalidate {
				if err := e.validatePath(leaf, triggerExplicit, validateOptions{}); err != nil {
					return err
				}
			}
		}
		// Baseline changes can flip dirty flags without any write.
		e.recomputeDirty()

		e.submitted = false
		e.submitCount = 0
		e.logger.Debug("form reset", "baseline", opts.Baseline, "revalidate", opts.Revalidate)
		return nil
	})
}

var errResetNotObject = errors.New("reset values must be an object")

// leaves lists the paths Reset writes: every non-empty object is walked,
// everything else is a leaf.
func leaves(p path.Path, v value.Value) []path.Path {
	obj, ok := v.(value.Object)
	if !ok || len(obj) == 0 {
		if p.IsRoot() {
			return nil
		}
		return []path.Path{p}
	}
	var out []path.Path
	for _, k := range obj.SortedKeys() {
		out = append(out, leaves(p.Key(k), obj[k])...)
	}
	return out
}

// resetMeta clears errors and touched state at and under p.
func (e *Engine) resetMeta(p path.Path) {
	for _, key := range e.errors.Keys() {
		kp, err := path.Parse(key)
		if err != nil || !kp.HasPrefix(p) {
			continue
		}
		if e.errors.Clear(key) {
			e.emitErrors(kp)
		}
	}
	for _, d := range e.fields.Under(p) {
		d.Touched = false
	}
}
