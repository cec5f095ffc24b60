package schema

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/goccy/go-json"

	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// LoadCUE compiles every form under the top-level "form" struct of src.
// Uses the CUE SDK's Go API directly, not the cue CLI.
func LoadCUE(filename string, src []byte) ([]*Form, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	formsVal := v.LookupPath(cue.ParsePath("form"))
	if !formsVal.Exists() {
		return nil, &CompileError{
			Field:   "form",
			Message: "no form definitions found",
			Pos:     Position{Filename: filename},
		}
	}

	iter, err := formsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var forms []*Form
	for iter.Next() {
		form, err := CompileCUE(unquoteLabel(iter.Label()), iter.Value())
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// CompileCUE parses one form struct.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`mode: "blur", fields: name: type: "text"`)
//	form, err := CompileCUE("signup", v)
func CompileCUE(name string, v cue.Value) (*Form, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	form := &Form{Name: name, Defaults: value.Object{}, Pos: cuePos(v.Pos())}

	if modeVal := v.LookupPath(cue.ParsePath("mode")); modeVal.Exists() {
		s, err := modeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if form.Mode, err = parseMode(s, "mode", cuePos(modeVal.Pos())); err != nil {
			return nil, err
		}
	}

	if defaultsVal := v.LookupPath(cue.ParsePath("defaults")); defaultsVal.Exists() {
		raw, err := defaultsVal.MarshalJSON()
		if err != nil {
			return nil, formatCUEError(err)
		}
		tree, err := value.FromJSON(raw)
		if err != nil {
			return nil, &CompileError{Field: "defaults", Message: err.Error(), Pos: cuePos(defaultsVal.Pos())}
		}
		if form.Defaults, err = defaultsObject(tree, cuePos(defaultsVal.Pos())); err != nil {
			return nil, err
		}
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return form, nil
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		f, err := compileCUEField(unquoteLabel(iter.Label()), iter.Value())
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, f)
	}
	return form, nil
}

// cueField is the JSON shape of a CUE field declaration.
type cueField struct {
	Type    string `json:"type"`
	Mode    string `json:"mode"`
	Persist bool   `json:"persist"`
	validator.Options
}

func compileCUEField(p string, v cue.Value) (Field, error) {
	pos := cuePos(v.Pos())
	raw, err := v.MarshalJSON()
	if err != nil {
		return Field{}, formatCUEError(err)
	}

	var def cueField
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return Field{}, &CompileError{
			Field:   fmt.Sprintf("fields.%q", p),
			Message: err.Error(),
			Pos:     pos,
		}
	}

	mode, err := parseMode(def.Mode, fmt.Sprintf("fields.%q.mode", p), pos)
	if err != nil {
		return Field{}, err
	}
	return Field{
		Path:    p,
		Type:    def.Type,
		Mode:    mode,
		Persist: def.Persist,
		Options: def.Options,
		Pos:     pos,
	}, nil
}

func unquoteLabel(label string) string {
	if strings.HasPrefix(label, `"`) {
		if s, err := strconv.Unquote(label); err == nil {
			return s
		}
	}
	return label
}

func cuePos(p token.Pos) Position {
	if !p.IsValid() {
		return Position{}
	}
	return Position{Filename: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     cuePos(positions[0]),
		}
	}

	return err
}
