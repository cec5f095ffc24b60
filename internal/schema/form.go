package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slayermass/stateform/internal/engine"
	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// Form is a compiled form definition.
type Form struct {
	Name     string
	Mode     field.Mode
	Defaults value.Object
	Fields   []Field
	Pos      Position
}

// Field is one field declaration, in declaration order.
type Field struct {
	Path    string
	Type    string
	Mode    field.Mode
	Persist bool
	Options validator.Options
	Pos     Position
}

// EngineOptions converts the declaration to registration options.
func (f Field) EngineOptions() engine.FieldOptions {
	return engine.FieldOptions{
		Options: f.Options,
		Mode:    f.Mode,
		Persist: f.Persist,
	}
}

// Position is a source location. The zero value means unknown.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// CompileError is a load failure with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     Position
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads a form definition file, dispatching on its extension
// (.cue or .hcl).
func LoadFile(filename string) ([]*Form, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read form definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return LoadCUE(filename, src)
	case ".hcl":
		return LoadHCL(filename, src)
	}
	return nil, fmt.Errorf("unsupported form definition %s: want .cue or .hcl", filename)
}

// Find returns the form named name, or the only form when name is empty.
func Find(forms []*Form, name string) (*Form, error) {
	if name == "" {
		if len(forms) == 1 {
			return forms[0], nil
		}
		return nil, fmt.Errorf("%d forms defined; pick one by name", len(forms))
	}
	for _, f := range forms {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("form %q not found", name)
}

func parseMode(s string, at string, pos Position) (field.Mode, error) {
	m, err := field.ParseMode(s)
	if err != nil {
		return "", &CompileError{Field: at, Message: err.Error(), Pos: pos}
	}
	return m, nil
}

func defaultsObject(v value.Value, pos Position) (value.Object, error) {
	switch d := v.(type) {
	case value.Object:
		return d, nil
	case value.Empty:
		return value.Object{}, nil
	}
	return nil, &CompileError{
		Field:   "defaults",
		Message: fmt.Sprintf("must be an object, got %s", value.KindOf(v)),
		Pos:     pos,
	}
}
