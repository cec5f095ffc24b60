package field

import (
	"github.com/slayermass/stateform/internal/path"
)

// Registry holds descriptors keyed by canonical path, remembering
// registration order for deterministic iteration.
type Registry struct {
	byKey map[string]*Descriptor
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Descriptor)}
}

// Put stores d, replacing any descriptor at the same path while keeping its
// original position.
func (r *Registry) Put(d *Descriptor) {
	key := d.Key()
	if _, exists := r.byKey[key]; !exists {
		r.order = append(r.order, key)
	}
	r.byKey[key] = d
}

// Get returns the descriptor registered at the canonical key.
func (r *Registry) Get(key string) (*Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Lookup is Get for a parsed path.
func (r *Registry) Lookup(p path.Path) (*Descriptor, bool) {
	return r.Get(p.String())
}

// Delete removes the descriptor at key.
func (r *Registry) Delete(key string) {
	if _, ok := r.byKey[key]; !ok {
		return
	}
	delete(r.byKey, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKey[k])
	}
	return out
}

// Active returns the active descriptors in registration order.
func (r *Registry) Active() []*Descriptor {
	var out []*Descriptor
	for _, k := range r.order {
		if d := r.byKey[k]; d.Active {
			out = append(out, d)
		}
	}
	return out
}

// Under returns descriptors at prefix or below it, in registration order.
func (r *Registry) Under(prefix path.Path) []*Descriptor {
	var out []*Descriptor
	for _, k := range r.order {
		if d := r.byKey[k]; d.Path.HasPrefix(prefix) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.byKey)
}
