package cli

import (
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/schema"
)

func TestValidateValidForms(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "forms", "valid"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All forms valid (2)")
}

func TestValidateSingleFile(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "forms", "valid", "newsletter.hcl"))
	require.NoError(t, err)
	assert.Contains(t, out, "(1)")
}

func TestValidateValidFormsJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "json", filepath.Join("testdata", "forms", "valid"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Forms)
}

func TestValidateInvalidForm(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "forms", "invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, schema.ErrUnknownFieldType)
	assert.Contains(t, out, schema.ErrInvertedBounds)
}

func TestValidateInvalidFormJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "json", filepath.Join("testdata", "forms", "invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)

	var codes []string
	for _, e := range resp.Data.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, schema.ErrUnknownFieldType)
	assert.Contains(t, codes, schema.ErrInvertedBounds)
}

func TestValidateBrokenDefinitionReportsLoadError(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "forms", "broken"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeLoadFailed)
	assert.Contains(t, out, "minLenght")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", "/nonexistent/forms")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, NewValidateCommand, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestFindFormFiles(t *testing.T) {
	files, err := FindFormFiles(filepath.Join("testdata", "forms"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "forms", "broken", "broken.cue"),
		filepath.Join("testdata", "forms", "invalid", "slider.cue"),
		filepath.Join("testdata", "forms", "valid", "newsletter.hcl"),
		filepath.Join("testdata", "forms", "valid", "signup.cue"),
	}, files)
}

func TestLoadForms_CollectAllKeepsGoodFiles(t *testing.T) {
	result, errs := LoadForms(filepath.Join("testdata", "forms"), LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, errs, 1)
	assert.Equal(t, 4, result.FileCount)

	var names []string
	for _, f := range result.Forms {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"survey", "newsletter", "signup"}, names)
}

func TestLoadForms_FailFastStopsAtFirstError(t *testing.T) {
	result, errs := LoadForms(filepath.Join("testdata", "forms"), LoadModeFailFast)
	require.NotNil(t, result)
	require.Len(t, errs, 1)
	assert.Empty(t, result.Forms)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)
}
