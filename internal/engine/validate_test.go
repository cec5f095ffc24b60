package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

func requiredOpts() validator.Options {
	return validator.Options{Required: true}
}

func messages(entries []errstore.Entry) []string {
	var out []string
	for _, en := range entries {
		out = append(out, en.Message)
	}
	return out
}

func TestValidate_RegisterPassIsSuppressed(t *testing.T) {
	e := newTestEngine(t, map[string]any{"email": ""})
	require.NoError(t, e.Register("email", "email", FieldOptions{Options: requiredOpts()}))

	assert.Empty(t, e.GetErrors("email"))
	assert.Empty(t, e.Errors())
	assert.False(t, e.GetStatus().IsValid)

	stored := e.errors.All("email")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Suppressed)
}

func TestValidate_BlurRevealsSuppressedError(t *testing.T) {
	e := newTestEngine(t, map[string]any{"email": ""})
	require.NoError(t, e.Register("email", "email", FieldOptions{Options: requiredOpts()}))

	require.NoError(t, e.OnBlur("email"))

	assert.Equal(t, []string{"required"}, messages(e.GetErrors("email")))
}

func TestValidate_ChangeShowsGenuineFailure(t *testing.T) {
	e := newTestEngine(t, map[string]any{"email": ""})
	require.NoError(t, e.Register("email", "email", FieldOptions{Options: requiredOpts()}))

	require.NoError(t, e.OnChange("email", "not-an-address"))
	assert.Equal(t, []string{"common.validation.email"}, messages(e.GetErrors("email")))

	require.NoError(t, e.OnChange("email", "me@example.com"))
	assert.Empty(t, e.GetErrors("email"))
	assert.True(t, e.GetStatus().IsValid)
}

func TestValidate_FirstInteractionOutsideModeRefreshes(t *testing.T) {
	e := newTestEngine(t, map[string]any{"name": ""}, WithMode(ModeBlur))
	require.NoError(t, e.Register("name", "text", FieldOptions{Options: requiredOpts()}))

	// The registration pass said "required"; the typed value fixes it, so
	// revealing must not show the stale result.
	require.NoError(t, e.OnChange("name", "bob"))
	assert.Empty(t, e.GetErrors("name"))
	assert.True(t, e.GetStatus().IsValid)
}

func TestValidate_BlurMode(t *testing.T) {
	e := newTestEngine(t, map[string]any{"name": "abcd"}, WithMode(ModeBlur))
	minLen := validator.Options{MinLength: validator.Int(3)}
	require.NoError(t, e.Register("name", "text", FieldOptions{Options: minLen}))

	require.NoError(t, e.OnChange("name", "ab"))
	assert.Empty(t, e.GetErrors("name"))

	require.NoError(t, e.OnBlur("name"))
	errs := e.GetErrors("name")
	require.Len(t, errs, 1)
	assert.Equal(t, "common.validation.minLength", errs[0].Message)
	assert.Equal(t, map[string]any{"minLength": 3}, errs[0].Params)
}

func TestValidate_FieldModeOverridesEngineMode(t *testing.T) {
	e := newTestEngine(t, map[string]any{"age": 5})
	opts := FieldOptions{Options: validator.Options{Max: validator.Float(10)}, Mode: ModeSubmit}
	require.NoError(t, e.Register("age", "number", opts))

	require.NoError(t, e.OnChange("age", 30))
	require.NoError(t, e.OnBlur("age"))
	assert.Empty(t, e.GetErrors("age"))

	require.NoError(t, e.Trigger("age"))
	assert.Equal(t, []string{"common.validation.max"}, messages(e.GetErrors("age")))
}

func TestValidate_AllModeValidatesOnChangeAndBlur(t *testing.T) {
	e := newTestEngine(t, map[string]any{"age": 1}, WithMode(ModeAll))
	require.NoError(t, e.Register("age", "number", FieldOptions{Options: validator.Options{Min: validator.Float(5)}}))

	require.NoError(t, e.OnChange("age", 2))
	assert.Len(t, e.GetErrors("age"), 1)

	require.NoError(t, e.SetValue("age", 6))
	require.NoError(t, e.OnBlur("age"))
	assert.Empty(t, e.GetErrors("age"))
}

func TestValidate_RequiredShortCircuits(t *testing.T) {
	e := newTestEngine(t, nil)
	calls := 0
	opts := validator.Options{
		Required:  true,
		MinLength: validator.Int(3),
		Validate: func(value.Value) (bool, string) {
			calls++
			return false, "never"
		},
	}
	require.NoError(t, e.Register("name", "text", FieldOptions{Options: opts}))
	require.NoError(t, e.Trigger("name"))

	assert.Equal(t, []string{"required"}, messages(e.GetErrors("name")))
	assert.Zero(t, calls)
}

func TestValidate_CustomValidatorMessages(t *testing.T) {
	e := newTestEngine(t, map[string]any{"user": "admin", "nick": "x"})

	reserved := func(v value.Value) (bool, string) {
		return v != value.String("admin"), "username.reserved"
	}
	generic := func(value.Value) (bool, string) { return false, "" }

	require.NoError(t, e.Register("user", "text", FieldOptions{Options: validator.Options{Validate: reserved}}))
	require.NoError(t, e.Register("nick", "text", FieldOptions{Options: validator.Options{Validate: generic}}))
	require.NoError(t, e.Trigger())

	assert.Equal(t, []string{"username.reserved"}, messages(e.GetErrors("user")))
	assert.Equal(t, []string{"common.validation.invalid"}, messages(e.GetErrors("nick")))
}

func TestValidate_CustomRunsAfterBuiltins(t *testing.T) {
	e := newTestEngine(t, map[string]any{"name": "ab"})
	opts := validator.Options{
		MinLength: validator.Int(3),
		Validate:  func(value.Value) (bool, string) { return false, "custom" },
	}
	require.NoError(t, e.Register("name", "text", FieldOptions{Options: opts}))
	require.NoError(t, e.Trigger("name"))

	assert.Equal(t, []string{"common.validation.minLength", "custom"}, messages(e.GetErrors("name")))
}

func TestValidate_DisabledIsAlwaysValid(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.Register("name", "text", FieldOptions{Options: validator.Options{Required: true, Disabled: true}}))

	require.NoError(t, e.Trigger())
	assert.Empty(t, e.Errors())
	assert.True(t, e.GetStatus().IsValid)
}

func TestValidate_ArrayRecursesIntoElementFields(t *testing.T) {
	e := newTestEngine(t, map[string]any{
		"nested": []any{
			map[string]any{"label": "ok"},
			map[string]any{"label": ""},
		},
	})
	require.NoError(t, e.Register("nested.0.label", "text", FieldOptions{Options: requiredOpts()}))
	require.NoError(t, e.Register("nested[1].label", "text", FieldOptions{Options: requiredOpts()}))

	require.NoError(t, e.Trigger("nested"))

	assert.Empty(t, e.GetErrors("nested.0.label"))
	assert.Equal(t, []string{"required"}, messages(e.GetErrors("nested[1].label")))
}

func TestValidate_ObjectRecursesIntoChildFields(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.Register("address.city", "text", FieldOptions{Options: requiredOpts()}))

	require.NoError(t, e.Trigger("address"))
	assert.Equal(t, []string{"required"}, messages(e.GetErrors("address.city")))
}

func TestValidate_WholeValueArrayIsOneField(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := newTestEngine(t, map[string]any{"period": []any{start, end}})
	require.NoError(t, e.Register("period", "daterange", FieldOptions{Options: requiredOpts()}))

	require.NoError(t, e.Trigger("period"))
	assert.Equal(t, []string{"common.validation.dateRange"}, messages(e.GetErrors("period")))
	assert.Empty(t, e.GetErrors("period.0"))
}

func TestValidate_ErrorEventsCarrySuppressedFlag(t *testing.T) {
	log := &eventLog{}
	e := newTestEngine(t, nil, WithObserver(log))

	var visible [][]errstore.Entry
	e.Subscribe("name").OnError(func(entries []errstore.Entry) { visible = append(visible, entries) })

	require.NoError(t, e.Register("name", "text", FieldOptions{Options: requiredOpts()}))

	require.Len(t, visible, 1)
	assert.Empty(t, visible[0])

	var raw []errstore.Entry
	for _, ev := range log.events {
		if ev.Path == "name" && len(ev.Errors) > 0 {
			raw = ev.Errors
		}
	}
	require.Len(t, raw, 1)
	assert.True(t, raw[0].Suppressed)

	require.NoError(t, e.OnBlur("name"))
	require.Len(t, visible, 2)
	assert.Equal(t, []string{"required"}, messages(visible[1]))
}

func TestValidate_SetErrorSurvivesRevalidation(t *testing.T) {
	e := newTestEngine(t, map[string]any{"user": "bob"})
	require.NoError(t, e.Register("user", "text", FieldOptions{}))

	require.NoError(t, e.SetError("user", "username.taken"))
	require.NoError(t, e.OnChange("user", "bobby"))

	errs := e.GetErrors("user")
	require.Len(t, errs, 1)
	assert.Equal(t, errstore.Entry{Type: errstore.TypeCustom, Message: "username.taken"}, errs[0])

	require.NoError(t, e.ClearErrors("user", errstore.TypeCustom))
	assert.Empty(t, e.GetErrors("user"))
}

func TestValidate_SuppressedCustomErrorRevealedByTrigger(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.Register("user", "text", FieldOptions{}))

	require.NoError(t, e.SetErrorEntry("user", errstore.Entry{Type: "server", Message: "offline", Suppressed: true}))
	assert.Empty(t, e.GetErrors("user"))

	require.NoError(t, e.Trigger("user"))
	assert.Equal(t, []string{"offline"}, messages(e.GetErrors("user")))
}

func TestValidate_ClearAllErrors(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.SetError("a", "x"))
	require.NoError(t, e.SetError("b", "y"))

	require.NoError(t, e.ClearErrors(""))
	assert.Empty(t, e.Errors())
}

func TestValidate_GetErrorsMany(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.SetError("a", "x"))

	got := e.GetErrorsMany("a", "b")
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x"}, messages(got[0]))
	assert.Empty(t, got[1])
}
