package value

import (
	"math"
	"math/big"
)

// Clone returns a deep copy of v. Containers and BigInt storage are never
// shared with the input; nil becomes Empty.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil, Empty:
		return Empty{}
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	case BigInt:
		return NewBigInt(val.Int)
	default:
		return v
	}
}

// CloneObject is Clone for an Object root. A nil input yields an empty Object.
func CloneObject(obj Object) Object {
	if obj == nil {
		return Object{}
	}
	return Clone(obj).(Object)
}

// Equal reports deep structural equality. Map key order is irrelevant, NaN
// equals NaN, dates compare by instant, and a BigInt equals a Number only when
// both hold the same integer.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, Empty:
		return IsEmpty(b)
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		switch bv := b.(type) {
		case Number:
			if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
				return true
			}
			return av == bv
		case BigInt:
			return bigEqualsFloat(bv, float64(av))
		}
		return false
	case BigInt:
		switch bv := b.(type) {
		case BigInt:
			return bigOrZero(av).Cmp(bigOrZero(bv)) == 0
		case Number:
			return bigEqualsFloat(av, float64(bv))
		}
		return false
	case Date:
		bv, ok := b.(Date)
		return ok && av.Time.Equal(bv.Time)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, exists := bv[k]
			if !exists || !Equal(elem, other) {
				return false
			}
		}
		return true
	}
	return false
}

func bigOrZero(b BigInt) *big.Int {
	if b.Int == nil {
		return new(big.Int)
	}
	return b.Int
}

func bigEqualsFloat(b BigInt, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	return new(big.Float).SetFloat64(f).Cmp(new(big.Float).SetInt(bigOrZero(b))) == 0
}
