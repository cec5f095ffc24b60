package validator

import (
	"math"
	"math/big"
	"strings"

	"github.com/slayermass/stateform/internal/value"
)

// Number is a finite float64.
type Number struct{}

func (Number) IsSet(v value.Value) bool {
	n, ok := v.(value.Number)
	return ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
}

func (Number) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	f := float64(v.(value.Number))
	if opts.Integer && f != math.Trunc(f) {
		return Fail(KeyInteger)
	}
	if opts.Min != nil && f < *opts.Min {
		return Fail(KeyMin, "min", *opts.Min)
	}
	if opts.Max != nil && f > *opts.Max {
		return Fail(KeyMax, "max", *opts.Max)
	}
	return nil
}

// BigInt is an arbitrary-precision integer. Integer-valued numbers and
// decimal digit strings are accepted as well.
type BigInt struct{}

func (BigInt) IsSet(v value.Value) bool {
	_, ok := asBigInt(v)
	return ok
}

func (BigInt) Validate(v value.Value, opts Options, hasValidValue bool) []Issue {
	if !hasValidValue {
		return blankOrInvalid(v)
	}
	n, _ := asBigInt(v)
	bf := new(big.Float).SetInt(n)
	if opts.Min != nil && bf.Cmp(big.NewFloat(*opts.Min)) < 0 {
		return Fail(KeyMin, "min", *opts.Min)
	}
	if opts.Max != nil && bf.Cmp(big.NewFloat(*opts.Max)) > 0 {
		return Fail(KeyMax, "max", *opts.Max)
	}
	return nil
}

func asBigInt(v value.Value) (*big.Int, bool) {
	switch val := v.(type) {
	case value.BigInt:
		if val.Int == nil {
			return nil, false
		}
		return val.Int, true
	case value.Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, false
		}
		n, _ := big.NewFloat(f).Int(nil)
		return n, true
	case value.String:
		s := strings.TrimSpace(string(val))
		if s == "" {
			return nil, false
		}
		return new(big.Int).SetString(s, 10)
	}
	return nil, false
}
