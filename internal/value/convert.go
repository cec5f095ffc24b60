package value

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// maxSafeInteger is the largest integer a float64 represents exactly.
const maxSafeInteger = 1<<53 - 1

// numberLike matches json.Number from both encoding/json and go-json.
type numberLike interface {
	String() string
	Float64() (float64, error)
}

// FromAny converts a Go value into a tree. Values are copied, never aliased.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Empty{}, nil
	case Value:
		return Clone(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Number(val), nil
	case int8:
		return Number(val), nil
	case int16:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return fromInt64(val), nil
	case uint:
		return fromUint64(uint64(val)), nil
	case uint8:
		return Number(val), nil
	case uint16:
		return Number(val), nil
	case uint32:
		return Number(val), nil
	case uint64:
		return fromUint64(val), nil
	case float32:
		return Number(val), nil
	case float64:
		return Number(val), nil
	case time.Time:
		return Date{Time: val}, nil
	case *time.Time:
		if val == nil {
			return Empty{}, nil
		}
		return Date{Time: *val}, nil
	case *big.Int:
		if val == nil {
			return Empty{}, nil
		}
		return NewBigInt(val), nil
	case numberLike:
		return parseNumber(val.String())
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

// MustFromAny is FromAny for literals in tests and examples. It panics on
// unsupported input.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Array{}, nil
		}
		arr := make(Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			converted, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", rv.Type().Key())
		}
		obj := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			converted, err := FromAny(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Empty{}, nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Invalid:
		return Empty{}, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", rv.Type())
}

func fromInt64(n int64) Value {
	if n > maxSafeInteger || n < -maxSafeInteger {
		return BigInt{Int: big.NewInt(n)}
	}
	return Number(n)
}

func fromUint64(n uint64) Value {
	if n > maxSafeInteger {
		return BigInt{Int: new(big.Int).SetUint64(n)}
	}
	return Number(n)
}

// parseNumber turns a JSON number literal into a Number, or a BigInt when an
// integer literal would lose precision as float64.
func parseNumber(lit string) (Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		n, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			return nil, fmt.Errorf("invalid number literal %q", lit)
		}
		if n.IsInt64() {
			return fromInt64(n.Int64()), nil
		}
		return BigInt{Int: n}, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q: %w", lit, err)
	}
	return Number(f), nil
}

// ToAny converts a tree back into plain Go values: nil, string, float64,
// bool, time.Time, *big.Int, []any and map[string]any.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Empty:
		return nil
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case Date:
		return val.Time
	case BigInt:
		return new(big.Int).Set(bigOrZero(val))
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	}
	return nil
}

// FromJSON decodes a JSON document into a tree. Integers that do not fit a
// float64 exactly become BigInt.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return FromAny(raw)
}

// ToJSON encodes a tree as JSON. Dates are RFC 3339 strings, BigInts are bare
// number literals and Empty is null.
func ToJSON(v Value) ([]byte, error) {
	jv, err := toJSONAny(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

func toJSONAny(v Value) (any, error) {
	switch val := v.(type) {
	case nil, Empty:
		return nil, nil
	case String:
		return string(val), nil
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite number %v has no JSON form", f)
		}
		return f, nil
	case Bool:
		return bool(val), nil
	case Date:
		return val.Time.UTC().Format(time.RFC3339Nano), nil
	case BigInt:
		return json.RawMessage(bigOrZero(val).String()), nil
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			converted, err := toJSONAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = converted
		}
		return out, nil
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			converted, err := toJSONAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}
