package engine

import (
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/path"
)

// GetErrors returns the visible errors at p, or nil.
func (e *Engine) GetErrors(p string) []errstore.Entry {
	key, err := path.Canonical(p)
	if err != nil {
		return nil
	}
	return e.errors.Visible(key)
}

// GetErrorsMany returns the visible errors at each path, in order.
func (e *Engine) GetErrorsMany(paths ...string) [][]errstore.Entry {
	out := make([][]errstore.Entry, len(paths))
	for i, p := range paths {
		out[i] = e.GetErrors(p)
	}
	return out
}

// Errors returns every path with at least one visible error.
func (e *Engine) Errors() map[string][]errstore.Entry {
	return e.errors.VisibleMap()
}

// SetError attaches a custom message at p.
func (e *Engine) SetError(p string, message string) error {
	return e.SetErrorEntry(p, errstore.Entry{Type: errstore.TypeCustom, Message: message})
}

// SetErrorEntry attaches entry at p. An empty Type defaults to
// errstore.TypeCustom. Entries of a non-validate type survive
// re-validation until cleared.
func (e *Engine) SetErrorEntry(p string, entry errstore.Entry) error {
	pp, err := path.Parse(p)
	if err != nil {
		return invalidPath(p, err)
	}
	if entry.Type == "" {
		entry.Type = errstore.TypeCustom
	}
	return e.unit(func() error {
		e.errors.Add(pp.String(), entry)
		e.emitErrors(pp)
		return nil
	})
}

// ClearErrors removes errors at p, restricted to the given types when any
// are named. The empty path clears every path.
func (e *Engine) ClearErrors(p string, types ...string) error {
	pp, err := path.Parse(p)
	if err != nil {
		return invalidPath(p, err)
	}
	return e.unit(func() error {
		keys := []string{pp.String()}
		if pp.IsRoot() {
			keys = e.errors.Keys()
		}
		for _, key := range keys {
			if !e.errors.Clear(key, types...) {
				continue
			}
			if kp, err := path.Parse(key); err == nil {
				e.emitErrors(kp)
			}
		}
		return nil
	})
}
