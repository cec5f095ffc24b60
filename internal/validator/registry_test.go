package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := Builtins()

	k, err := r.Lookup("number")
	require.NoError(t, err)
	assert.IsType(t, Number{}, k)

	_, err = r.Lookup("colour")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Contains(t, err.Error(), `"colour"`)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("text", Text{})
	assert.Panics(t, func() { r.Register("text", Text{}) })
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", Text{})
	r.Register("alpha", Number{})
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
	assert.True(t, r.Has("zeta"))
	assert.False(t, r.Has("beta"))
}

func TestWholeValueDeclarations(t *testing.T) {
	r := Builtins()
	for _, name := range r.Names() {
		k, err := r.Lookup(name)
		require.NoError(t, err)
		want := name == "daterange" || name == "multiselect"
		assert.Equal(t, want, IsWholeValue(k), name)
	}
}

func TestFailBuildsParams(t *testing.T) {
	issues := Fail(KeyMinLength, "minLength", 5)
	require.Len(t, issues, 1)
	assert.Equal(t, "common.validation.minLength", issues[0].Message())
	assert.Equal(t, map[string]any{"minLength": 5}, issues[0].Params)

	assert.Nil(t, Fail(KeyEmail)[0].Params)
	assert.Equal(t, "common.validation.invalid", Invalid()[0].Message())
}
