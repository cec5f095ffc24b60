package stateform_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform"
)

func quiet() stateform.Option {
	return stateform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNew_ChangeRevealsErrors(t *testing.T) {
	f, err := stateform.New(map[string]any{"email": ""}, quiet())
	require.NoError(t, err)

	require.NoError(t, f.Register("email", "email", stateform.FieldOptions{
		Options: stateform.Options{Required: true},
	}))

	var seen [][]stateform.ErrorEntry
	unsubscribe := f.Subscribe("email").OnError(func(errs []stateform.ErrorEntry) {
		seen = append(seen, errs)
	})
	defer unsubscribe()

	require.NoError(t, f.OnChange("email", "not-an-address"))
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	require.Len(t, last, 1)
	assert.Equal(t, "common.validation.email", last[0].Message)

	require.NoError(t, f.OnChange("email", "ada@example.com"))
	assert.Empty(t, f.GetErrors("email"))
	assert.True(t, f.GetStatus().IsDirty)
}

func TestLoadForm(t *testing.T) {
	file := filepath.Join(t.TempDir(), "login.hcl")
	require.NoError(t, os.WriteFile(file, []byte(`
form "login" {
  defaults = {
    user = ""
  }
  field "user" {
    type     = "text"
    required = true
  }
}
`), 0o644))

	f, err := stateform.LoadForm(file, "", quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, f.Fields())

	var failed map[string][]stateform.ErrorEntry
	require.NoError(t, f.OnSubmit(nil, func(errs map[string][]stateform.ErrorEntry) {
		failed = errs
	})())
	require.Len(t, failed["user"], 1)
	assert.Equal(t, "required", failed["user"][0].Message)

	_, err = stateform.LoadForm(file, "signup", quiet())
	assert.Error(t, err)
}

func TestValidators_CustomKind(t *testing.T) {
	kinds := stateform.Validators()
	assert.True(t, kinds.Has("text"))
	assert.False(t, kinds.Has("slug"))

	f, err := stateform.New(nil, quiet(), stateform.WithRegistry(kinds))
	require.NoError(t, err)
	err = f.Register("slug", "slug", stateform.FieldOptions{})
	assert.True(t, stateform.IsUnknownTypeError(err))
}
