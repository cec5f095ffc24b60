package value

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"empty sentinel", Empty{}, "null"},
		{"integer number", Number(42), "42"},
		{"negative number", Number(-100), "-100"},
		{"fraction", Number(1.5), "1.5"},
		{"zero", Number(0), "0"},
		{"large exponent", Number(1e21), "1e+21"},
		{"small exponent", Number(1e-7), "1e-7"},
		{"bigint", BigInt{Int: huge}, "123456789012345678901234567890"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"date", NewDate(time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))), `"2024-03-01T09:00:00Z"`},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array", Arr(Number(1), String("x"), Empty{}), `[1,"x",null]`},
		{"plain go map", map[string]any{"b": 1, "a": "z"}, `{"a":"z","b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Number(1),
		"alpha": Object{"b": Number(1), "a": Number(2)},
		"beta":  Number(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D..., which sort before U+FB01 in
	// UTF-16 but after it in UTF-8.
	obj := Object{"ﬁ": Number(1), "\U0001F600": Number(2)}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"ﬁ\":1}", string(result))
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	result, err := MarshalCanonical(String("a\"b\\c\n<>&\u0001"))
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\n<>&\u0001"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := String("e\u0301")
	composed := String("\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Number(math.Inf(1)))
	assert.Error(t, err)

	_, err = MarshalCanonical(Obj(O("x", Number(math.NaN()))))
	assert.Error(t, err)
}

func TestFingerprintStable(t *testing.T) {
	a := Obj(O("name", String("a")), O("age", Number(5)))
	b := Obj(O("age", Number(5)), O("name", String("a")))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	fc, err := Fingerprint(Obj(O("age", Number(6))))
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}
