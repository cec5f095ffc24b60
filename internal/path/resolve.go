package path

import (
	"errors"
	"fmt"

	"github.com/slayermass/stateform/internal/value"
)

// MaxArrayGrowth is the most elements a single Set may add to an Array.
const MaxArrayGrowth = 1024

// ErrIndexOutOfRange is wrapped by Set when an index lies further past the
// end of an Array than MaxArrayGrowth allows.
var ErrIndexOutOfRange = errors.New("array index out of range")

// Get returns the value at p and whether it exists. Missing locations read
// as value.Empty. The returned value is not cloned.
func Get(root value.Value, p Path) (value.Value, bool) {
	node := root
	for _, seg := range p {
		switch n := node.(type) {
		case value.Object:
			child, ok := n[seg]
			if !ok {
				return value.Empty{}, false
			}
			node = child
		case value.Array:
			idx, ok := Index(seg)
			if !ok || idx >= len(n) {
				return value.Empty{}, false
			}
			node = n[idx]
		default:
			return value.Empty{}, false
		}
	}
	if node == nil {
		return value.Empty{}, true
	}
	return node, true
}

// Has reports whether p addresses an existing entry.
func Has(root value.Value, p Path) bool {
	_, ok := Get(root, p)
	return ok
}

// Set writes v at p and returns the (possibly new) root. Objects are mutated
// in place; an Array only gets a new backing slice when it grows. Missing or
// scalar intermediates are replaced by an Object, or by an Array when the next
// segment is an index. Writing past the end of an Array pads it with Empty,
// up to MaxArrayGrowth new elements.
func Set(root value.Value, p Path, v value.Value) (value.Value, error) {
	if len(p) == 0 {
		return v, nil
	}
	return setAt(root, p, 0, v)
}

func setAt(node value.Value, p Path, depth int, v value.Value) (value.Value, error) {
	seg := p[depth]
	last := depth == len(p)-1

	if !value.IsContainer(node) {
		if _, isIdx := Index(seg); isIdx {
			node = value.Array{}
		} else {
			node = value.Object{}
		}
	}

	switch n := node.(type) {
	case value.Object:
		if last {
			n[seg] = v
			return n, nil
		}
		child, err := setAt(n[seg], p, depth+1, v)
		if err != nil {
			return nil, err
		}
		n[seg] = child
		return n, nil
	case value.Array:
		idx, ok := Index(seg)
		if !ok {
			return nil, fmt.Errorf("path %s: segment %q is not an index into an array", p, seg)
		}
		if idx-len(n) >= MaxArrayGrowth {
			return nil, fmt.Errorf("path %s: index %d on array of length %d: %w", p, idx, len(n), ErrIndexOutOfRange)
		}
		for len(n) <= idx {
			n = append(n, value.Empty{})
		}
		if last {
			n[idx] = v
			return n, nil
		}
		child, err := setAt(n[idx], p, depth+1, v)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	}
	panic("unreachable")
}

// Unset removes the entry at p and returns the root. Object keys are deleted;
// Array elements become Empty so sibling indices stay stable. Unsetting the
// root yields Empty.
func Unset(root value.Value, p Path) value.Value {
	if len(p) == 0 {
		return value.Empty{}
	}
	parent, ok := Get(root, p.Parent())
	if !ok {
		return root
	}
	switch n := parent.(type) {
	case value.Object:
		delete(n, p.Last())
	case value.Array:
		if idx, ok := Index(p.Last()); ok && idx < len(n) {
			n[idx] = value.Empty{}
		}
	}
	return root
}

// GetString parses s and reads it. Malformed paths read as missing.
func GetString(root value.Value, s string) (value.Value, bool) {
	p, err := Parse(s)
	if err != nil {
		return value.Empty{}, false
	}
	return Get(root, p)
}
