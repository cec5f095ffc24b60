package schema

import (
	"fmt"

	"github.com/slayermass/stateform/internal/engine"
)

// Build creates an engine seeded with the form's defaults and registers every
// field in declaration order. The form's mode applies unless opts override
// it.
func Build(form *Form, opts ...engine.Option) (*engine.Engine, error) {
	var all []engine.Option
	if form.Mode != "" {
		all = append(all, engine.WithMode(form.Mode))
	}
	all = append(all, opts...)

	e, err := engine.New(form.Defaults, all...)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", form.Name, err)
	}
	for _, f := range form.Fields {
		if err := e.Register(f.Path, f.Type, f.EngineOptions()); err != nil {
			return nil, fmt.Errorf("form %s: field %s: %w", form.Name, f.Path, err)
		}
	}
	return e, nil
}
