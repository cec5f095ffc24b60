package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/schema"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

func TestCompileText(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", filepath.Join("testdata", "forms", "valid"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 2 form(s)")
	assert.Contains(t, out, "newsletter: 2 field(s)")
	assert.Contains(t, out, "signup: 2 field(s)")
}

func TestCompileJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "json", filepath.Join("testdata", "forms", "valid", "signup.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Forms, 1)

	form := resp.Data.Forms[0]
	assert.Equal(t, "signup", form.Name)
	assert.Len(t, form.Fingerprint, 64)

	def, err := value.FromJSON(form.Definition)
	require.NoError(t, err)
	assert.Equal(t, value.String("change"), mustGet(t, def, "mode"))
	assert.Equal(t, value.Number(18), mustGet(t, def, "fields.1.options.min"))
}

func TestCompileWritesCanonicalFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "forms.json")

	_, err := execute(t, NewCompileCommand, "text", filepath.Join("testdata", "forms", "valid"), "-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	tree, err := value.FromJSON(data)
	require.NoError(t, err)
	again, err := value.MarshalCanonical(tree)
	require.NoError(t, err)
	assert.Equal(t, string(again)+"\n", string(data))

	forms, ok := tree.(value.Array)
	require.True(t, ok)
	require.Len(t, forms, 2)
	assert.Equal(t, value.String("newsletter"), mustGet(t, forms[0], "name"))
	assert.Equal(t, value.String("blur"), mustGet(t, forms[0], "mode"))
}

func TestCompileInvalidFormFails(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", filepath.Join("testdata", "forms", "invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, schema.ErrUnknownFieldType)
}

func TestCompileBrokenDefinitionIsCommandError(t *testing.T) {
	out, err := execute(t, NewCompileCommand, "text", filepath.Join("testdata", "forms", "broken"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
}

func TestCompileForm(t *testing.T) {
	form := &schema.Form{
		Name: "profile",
		Defaults: value.Object{
			"nick": value.String("x"),
		},
		Fields: []schema.Field{
			{Path: "nick", Type: "text", Options: validator.Options{Required: true, MaxLength: validator.Int(8)}},
			{Path: "bio", Type: "richtext", Mode: field.ModeBlur, Persist: true},
		},
	}

	got, err := CompileForm(form)
	require.NoError(t, err)

	want := value.MustFromAny(map[string]any{
		"name":     "profile",
		"mode":     "change",
		"defaults": map[string]any{"nick": "x"},
		"fields": []any{
			map[string]any{
				"path":    "nick",
				"type":    "text",
				"options": map[string]any{"required": true, "maxLength": 8},
			},
			map[string]any{
				"path":    "bio",
				"type":    "richtext",
				"mode":    "blur",
				"persist": true,
				"options": map[string]any{},
			},
		},
	})
	assert.True(t, value.Equal(want, got), "got %s", canonical(t, got))

	// The compiled tree is a copy.
	got["defaults"].(value.Object)["nick"] = value.String("y")
	assert.Equal(t, value.String("x"), form.Defaults["nick"])
}

func mustGet(t *testing.T, v value.Value, p string) value.Value {
	t.Helper()
	got, ok := path.GetString(v, p)
	require.True(t, ok, "no value at %s", p)
	return got
}

func canonical(t *testing.T, v value.Value) string {
	t.Helper()
	data, err := value.MarshalCanonical(v)
	require.NoError(t, err)
	return string(data)
}
