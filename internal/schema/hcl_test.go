package schema

import (
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/value"
)

func TestLoadHCL_Signup(t *testing.T) {
	src, err := os.ReadFile("testdata/signup.hcl")
	require.NoError(t, err)

	forms, err := LoadHCL("signup.hcl", src)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	form := forms[0]
	assert.Equal(t, "signup", form.Name)
	assert.Equal(t, field.ModeChange, form.Mode)
	assert.Equal(t, value.String("a"), form.Defaults["name"])
	assert.Equal(t, value.Number(5), form.Defaults["age"])
	assert.Equal(t, value.Arr(), form.Defaults["nested"])

	ledger, ok := form.Defaults["ledger"].(value.BigInt)
	require.True(t, ok)
	want, _ := new(big.Int).SetString("9007199254740993", 10)
	assert.Equal(t, 0, want.Cmp(ledger.Int))

	require.Len(t, form.Fields, 4)
	assert.Equal(t, "address.city", form.Fields[2].Path)
	assert.Equal(t, field.ModeBlur, form.Fields[2].Mode)

	starts := form.Fields[3].Options
	require.NotNil(t, starts.MinDate)
	assert.True(t, starts.MinDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadHCL_UnknownAttributeIsRejected(t *testing.T) {
	src := []byte(`
form "x" {
  field "name" {
    type  = "text"
    color = "red"
  }
}
`)
	_, err := LoadHCL("x.hcl", src)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "x.hcl", ce.Pos.Filename)
	assert.Equal(t, 5, ce.Pos.Line)
}

func TestLoadHCL_MissingTypeIsRejected(t *testing.T) {
	_, err := LoadHCL("x.hcl", []byte(`form "x" { field "name" {} }`))
	require.Error(t, err)
}

func TestLoadHCL_BadDate(t *testing.T) {
	src := []byte(`
form "x" {
  field "d" {
    type     = "date"
    max_date = "tomorrow"
  }
}
`)
	_, err := LoadHCL("x.hcl", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestLoadHCL_NoForms(t *testing.T) {
	_, err := LoadHCL("x.hcl", []byte(``))
	require.Error(t, err)
}

func TestCtyToValue(t *testing.T) {
	in := cty.ObjectVal(map[string]cty.Value{
		"s":    cty.StringVal("x"),
		"n":    cty.NumberFloatVal(1.5),
		"b":    cty.True,
		"null": cty.NullVal(cty.String),
		"list": cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}),
	})

	got, err := ctyToValue(in)
	require.NoError(t, err)

	want := value.MustFromAny(map[string]any{
		"s":    "x",
		"n":    1.5,
		"b":    true,
		"null": nil,
		"list": []any{1, 2},
	})
	assert.True(t, value.Equal(want, got))
}
