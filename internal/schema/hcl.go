package schema

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// hclFile is the top-level structure of an HCL form file.
type hclFile struct {
	Forms []*hclForm `hcl:"form,block"`
}

// hclForm is a `form "name" { ... }` block.
type hclForm struct {
	Name     string      `hcl:"name,label"`
	Mode     string      `hcl:"mode,optional"`
	Defaults *cty.Value  `hcl:"defaults,optional"`
	Fields   []*hclField `hcl:"field,block"`
}

// hclField is a `field "path" { ... }` block.
type hclField struct {
	Path      string   `hcl:"path,label"`
	Type      string   `hcl:"type"`
	Mode      string   `hcl:"mode,optional"`
	Persist   bool     `hcl:"persist,optional"`
	Required  bool     `hcl:"required,optional"`
	Disabled  bool     `hcl:"disabled,optional"`
	Min       *float64 `hcl:"min,optional"`
	Max       *float64 `hcl:"max,optional"`
	Integer   bool     `hcl:"integer,optional"`
	MinLength *int     `hcl:"min_length,optional"`
	MaxLength *int     `hcl:"max_length,optional"`
	Pattern   string   `hcl:"pattern,optional"`
	MinItems  *int     `hcl:"min_items,optional"`
	MaxItems  *int     `hcl:"max_items,optional"`
	Choices   []string `hcl:"choices,optional"`
	MinDate   string   `hcl:"min_date,optional"`
	MaxDate   string   `hcl:"max_date,optional"`
}

// LoadHCL decodes every form block in src.
func LoadHCL(filename string, src []byte) ([]*Form, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	var cfg hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, diagError(diags)
	}
	if len(cfg.Forms) == 0 {
		return nil, &CompileError{
			Field:   "form",
			Message: "no form definitions found",
			Pos:     Position{Filename: filename},
		}
	}

	pos := Position{Filename: filename}
	forms := make([]*Form, 0, len(cfg.Forms))
	for _, hf := range cfg.Forms {
		form, err := compileHCLForm(hf, pos)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func compileHCLForm(hf *hclForm, pos Position) (*Form, error) {
	form := &Form{Name: hf.Name, Defaults: value.Object{}, Pos: pos}

	var err error
	if form.Mode, err = parseMode(hf.Mode, fmt.Sprintf("form.%s.mode", hf.Name), pos); err != nil {
		return nil, err
	}

	if hf.Defaults != nil && !hf.Defaults.IsNull() {
		tree, err := ctyToValue(*hf.Defaults)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("form.%s.defaults", hf.Name), Message: err.Error(), Pos: pos}
		}
		if form.Defaults, err = defaultsObject(tree, pos); err != nil {
			return nil, err
		}
	}

	for _, hfield := range hf.Fields {
		f, err := compileHCLField(hf.Name, hfield, pos)
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, f)
	}
	return form, nil
}

func compileHCLField(formName string, hf *hclField, pos Position) (Field, error) {
	at := fmt.Sprintf("form.%s.field.%q", formName, hf.Path)

	mode, err := parseMode(hf.Mode, at+".mode", pos)
	if err != nil {
		return Field{}, err
	}
	minDate, err := parseDate(hf.MinDate, at+".min_date", pos)
	if err != nil {
		return Field{}, err
	}
	maxDate, err := parseDate(hf.MaxDate, at+".max_date", pos)
	if err != nil {
		return Field{}, err
	}

	return Field{
		Path:    hf.Path,
		Type:    hf.Type,
		Mode:    mode,
		Persist: hf.Persist,
		Pos:     pos,
		Options: validator.Options{
			Required:  hf.Required,
			Disabled:  hf.Disabled,
			Min:       hf.Min,
			Max:       hf.Max,
			Integer:   hf.Integer,
			MinLength: hf.MinLength,
			MaxLength: hf.MaxLength,
			Pattern:   hf.Pattern,
			MinItems:  hf.MinItems,
			MaxItems:  hf.MaxItems,
			Choices:   hf.Choices,
			MinDate:   minDate,
			MaxDate:   maxDate,
		},
	}, nil
}

func parseDate(s, at string, pos Position) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &CompileError{Field: at, Message: fmt.Sprintf("invalid date %q: want RFC 3339 or YYYY-MM-DD", s), Pos: pos}
}

// ctyToValue converts a decoded HCL value into a value tree. Integers beyond
// the float64-exact range become BigInt.
func ctyToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return value.Empty{}, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return value.String(v.AsString()), nil

	case ty == cty.Number:
		if bf := v.AsBigFloat(); bf.IsInt() {
			n, _ := bf.Int(nil)
			if !n.IsInt64() || absInt64(n.Int64()) > 1<<53-1 {
				return value.NewBigInt(n), nil
			}
			return value.Number(float64(n.Int64())), nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return value.Number(f), nil

	case ty == cty.Bool:
		return value.Bool(v.True()), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		arr := value.Array{}
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			converted, err := ctyToValue(elem)
			if err != nil {
				return nil, err
			}
			arr = append(arr, converted)
		}
		return arr, nil

	case ty.IsObjectType() || ty.IsMapType():
		obj := value.Object{}
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			converted, err := ctyToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			obj[key.AsString()] = converted
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported HCL value type %s", ty.FriendlyName())
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// diagError turns the first error diagnostic into a CompileError.
func diagError(diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		ce := &CompileError{Field: d.Summary, Message: d.Detail}
		if d.Subject != nil {
			ce.Pos = Position{
				Filename: d.Subject.Filename,
				Line:     d.Subject.Start.Line,
				Column:   d.Subject.Start.Column,
			}
		}
		if ce.Message == "" {
			ce.Message = d.Summary
		}
		return ce
	}
	return diags
}
