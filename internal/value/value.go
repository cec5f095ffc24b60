// Package value defines the form value tree: a sealed set of leaf and
// container variants shared by the store, the path resolver and the diff
// engine.
package value

import (
	"math/big"
	"slices"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface over the tree variants.
// Only Empty, String, Number, Bool, Date, BigInt, Array and Object implement it.
type Value interface {
	value()
}

// Empty is the explicit "absent" sentinel. A nil Value is treated as Empty
// everywhere in this package.
type Empty struct{}

func (Empty) value() {}

// String is a text leaf.
type String string

func (String) value() {}

// Number is a float64 leaf.
type Number float64

func (Number) value() {}

// Bool is a boolean leaf.
type Bool bool

func (Bool) value() {}

// Date is a point in time.
type Date struct {
	time.Time
}

func (Date) value() {}

// BigInt is an arbitrary-precision integer leaf. A nil Int reads as zero.
type BigInt struct {
	*big.Int
}

func (BigInt) value() {}

// Array is an ordered sequence.
type Array []Value

func (Array) value() {}

// Object is a string-keyed map. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Kind names a variant. It is used in error messages and traces.
type Kind string

const (
	KindEmpty  Kind = "empty"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindDate   Kind = "date"
	KindBigInt Kind = "bigint"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// KindOf reports the variant of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil, Empty:
		return KindEmpty
	case String:
		return KindString
	case Number:
		return KindNumber
	case Bool:
		return KindBool
	case Date:
		return KindDate
	case BigInt:
		return KindBigInt
	case Array:
		return KindArray
	case Object:
		return KindObject
	default:
		return KindEmpty
	}
}

// IsEmpty reports whether v is the empty sentinel (or nil).
func IsEmpty(v Value) bool {
	switch v.(type) {
	case nil, Empty:
		return true
	}
	return false
}

// IsContainer reports whether v is an Array or an Object.
func IsContainer(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return true
	}
	return false
}

// NewDate wraps t as a Date leaf.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// NewBigInt wraps a copy of n.
func NewBigInt(n *big.Int) BigInt {
	if n == nil {
		return BigInt{Int: new(big.Int)}
	}
	return BigInt{Int: new(big.Int).Set(n)}
}

// Pair is a key/value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is shorthand for Pair.
//
//	value.Obj(value.O("name", value.String("a")), value.O("age", value.Number(5)))
func O(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// Obj builds an Object from pairs.
func Obj(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// Arr builds an Array from values.
func Arr(vals ...Value) Array {
	if vals == nil {
		return Array{}
	}
	return Array(vals)
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 orders strings by UTF-16 code units. Go's native string
// comparison uses UTF-8 bytes and disagrees for supplementary-plane runes.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
