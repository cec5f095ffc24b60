// Package diff computes which locations of a value tree changed between two
// snapshots.
package diff

import (
	"sort"

	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/value"
)

// Changes returns every location whose value differs between before and
// after, one entry per location, sorted by canonical string. A differing leaf
// is reported together with each enclosing container. When a subtree changes
// shape (object to array, container to leaf, element removed) every
// descendant on either side is reported too, so subscribers on a vanished
// path still learn about it. The root itself is never included.
func Changes(before, after value.Value) []path.Path {
	c := &collector{seen: make(map[string]path.Path)}
	c.walk(path.Root(), before, after)

	keys := make([]string, 0, len(c.seen))
	for k := range c.seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]path.Path, len(keys))
	for i, k := range keys {
		out[i] = c.seen[k]
	}
	return out
}

// Diff returns the changed paths as strings: the dot form of every location
// from Changes, plus the bracket form for locations under a sequence index.
func Diff(before, after value.Value) []string {
	var out []string
	for _, p := range Changes(before, after) {
		out = append(out, p.Variants()...)
	}
	return out
}

type collector struct {
	seen map[string]path.Path
}

func (c *collector) record(p path.Path) {
	if p.IsRoot() {
		return
	}
	c.seen[p.String()] = p
}

func (c *collector) walk(p path.Path, a, b value.Value) {
	if value.Equal(a, b) {
		return
	}

	switch av := a.(type) {
	case value.Object:
		if bv, ok := b.(value.Object); ok {
			for k := range union(av, bv) {
				c.walk(p.Key(k), av[k], bv[k])
			}
			c.record(p)
			return
		}
	case value.Array:
		if bv, ok := b.(value.Array); ok {
			n := max(len(av), len(bv))
			for i := 0; i < n; i++ {
				c.walk(p.Index(i), at(av, i), at(bv, i))
			}
			c.record(p)
			return
		}
	}

	c.record(p)
	c.descendants(p, a)
	c.descendants(p, b)
}

// descendants records every location below p in v.
func (c *collector) descendants(p path.Path, v value.Value) {
	switch n := v.(type) {
	case value.Object:
		for k, child := range n {
			cp := p.Key(k)
			c.record(cp)
			c.descendants(cp, child)
		}
	case value.Array:
		for i, child := range n {
			cp := p.Index(i)
			c.record(cp)
			c.descendants(cp, child)
		}
	}
}

func union(a, b value.Object) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

func at(arr value.Array, i int) value.Value {
	if i < len(arr) {
		return arr[i]
	}
	return nil
}
