package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/field"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/validator"
	"github.com/slayermass/stateform/internal/value"
)

// FieldOptions configures a registered field.
type FieldOptions = field.Options

// Mode selects which interaction re-validates a field.
type Mode = field.Mode

const (
	ModeChange = field.ModeChange
	ModeBlur   = field.ModeBlur
	ModeSubmit = field.ModeSubmit
	ModeAll    = field.ModeAll
)

// Status is the form-level state returned by GetStatus.
type Status struct {
	IsDirty     bool `json:"isDirty" yaml:"isDirty"`
	IsSubmitted bool `json:"isSubmitted" yaml:"isSubmitted"`
	SubmitCount int  `json:"submitCount" yaml:"submitCount"`
	// IsValid is false while any path holds an error, including entries from
	// the registration pass that GetErrors does not show yet.
	IsValid bool `json:"isValid" yaml:"isValid"`
}

// Engine is one form instance. It is not safe for concurrent use: every
// method, ChangeStateDirectly included, must be called from one goroutine.
type Engine struct {
	current value.Value
	initial value.Value

	fields   *field.Registry
	errors   *errstore.Store
	bus      *bus.Bus
	kinds    *validator.Registry
	queue    *taskQueue
	ids      IDGenerator
	logger   *slog.Logger
	mode     Mode
	strict   bool
	prod     bool
	maxDrain int

	observers []bus.Observer

	// depth is the nesting level of the running unit of work.
	depth int

	submitted   bool
	submitCount int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMode sets the engine-wide validation mode. Default is ModeChange.
func WithMode(m Mode) Option {
	return func(e *Engine) {
		e.mode = m
	}
}

// WithRegistry replaces the validator registry. Default is
// validator.Builtins().
func WithRegistry(r *validator.Registry) Option {
	return func(e *Engine) {
		e.kinds = r
	}
}

// WithIDGenerator sets the id source for descriptors and subscriptions.
// Default is UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithStrictTypes rejects writes to required fields whose value the field's
// type does not accept, returning a TypeMismatchError.
func WithStrictTypes() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithProduction logs configuration errors instead of returning them.
func WithProduction() Option {
	return func(e *Engine) {
		e.prod = true
	}
}

// WithMaxDrainSteps bounds the deferred tasks one unit of work may run.
func WithMaxDrainSteps(n int) Option {
	return func(e *Engine) {
		e.maxDrain = n
	}
}

// WithObserver attaches an observer that sees every emitted event.
func WithObserver(o bus.Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an engine whose current and initial trees are both a copy of
// defaults. defaults may be nil, a value.Object, or any Go map or struct
// value.FromAny accepts.
func New(defaults any, opts ...Option) (*Engine, error) {
	e := &Engine{
		fields:   field.NewRegistry(),
		errors:   errstore.New(),
		queue:    newTaskQueue(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
		mode:     ModeChange,
		maxDrain: DefaultMaxDrainSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.kinds == nil {
		e.kinds = validator.Builtins()
	}
	if e.maxDrain <= 0 {
		e.maxDrain = DefaultMaxDrainSteps
	}

	root, err := defaultsTree(defaults)
	if err != nil {
		return nil, err
	}
	e.current = root
	e.initial = value.Clone(root)

	e.bus = bus.New(e.ids, e.logger)
	for _, o := range e.observers {
		e.bus.Observe(o)
	}
	return e, nil
}

func defaultsTree(defaults any) (value.Value, error) {
	if defaults == nil {
		return value.Object{}, nil
	}
	v, err := value.FromAny(defaults)
	if err != nil {
		return nil, &ConfigError{Code: ErrCodeInvalidDefaults, Err: err}
	}
	switch root := v.(type) {
	case value.Object:
		return value.Clone(root), nil
	case value.Empty:
		return value.Object{}, nil
	}
	return nil, &ConfigError{
		Code: ErrCodeInvalidDefaults,
		Err:  fmt.Errorf("defaults must be an object, got %s", value.KindOf(v)),
	}
}

// begin opens a unit of work. Every begin is paired with a deferred end.
func (e *Engine) begin() {
	e.depth++
}

// end closes a unit of work. Closing the outermost unit drains deferred
// tasks.
func (e *Engine) end() error {
	e.depth--
	if e.depth > 0 {
		return nil
	}
	return e.drain()
}

// drain runs deferred tasks in FIFO order. Tasks run inside a unit so
// engine calls they make do not drain recursively.
func (e *Engine) drain() error {
	e.depth++
	defer func() { e.depth-- }()

	guard := newDrainGuard(e.maxDrain)
	for {
		t, ok := e.queue.TryDequeue()
		if !ok {
			return nil
		}
		if err := guard.Check(t.name); err != nil {
			dropped := append([]task{t}, e.queue.Drop()...)
			e.logger.Warn("deferred task drain aborted",
				"task", t.name,
				"limit", e.maxDrain,
				"dropped", len(dropped))
			for _, d := range dropped {
				if d.dropped != nil {
					d.dropped(err)
				}
			}
			return err
		}
		t.fn()
	}
}

// unit runs fn as one unit of work and joins its error with any drain error.
func (e *Engine) unit(fn func() error) (err error) {
	e.begin()
	defer func() {
		err = errors.Join(err, e.end())
	}()
	return fn()
}

// Batch runs fn as a single unit of work: deferred tasks scheduled by the
// calls inside fn run once, after fn returns.
func (e *Engine) Batch(fn func() error) error {
	return e.unit(fn)
}

// GetValue returns a copy of the value at p. The empty path is the whole
// tree. Missing or unparsable paths yield value.Empty.
func (e *Engine) GetValue(p string) value.Value {
	return lookup(e.current, p)
}

// GetValues returns copies of the values at each path, in order.
func (e *Engine) GetValues(paths ...string) []value.Value {
	out := make([]value.Value, len(paths))
	for i, p := range paths {
		out[i] = lookup(e.current, p)
	}
	return out
}

// GetInitialValue returns a copy of the baseline value at p.
func (e *Engine) GetInitialValue(p string) value.Value {
	return lookup(e.initial, p)
}

// GetInitialValues returns copies of the baseline values at each path.
func (e *Engine) GetInitialValues(paths ...string) []value.Value {
	out := make([]value.Value, len(paths))
	for i, p := range paths {
		out[i] = lookup(e.initial, p)
	}
	return out
}

// Values returns a copy of the whole current tree as an object.
func (e *Engine) Values() value.Object {
	obj, _ := value.Clone(e.current).(value.Object)
	if obj == nil {
		obj = value.Object{}
	}
	return obj
}

func lookup(root value.Value, p string) value.Value {
	pp, err := path.Parse(p)
	if err != nil {
		return value.Empty{}
	}
	v, _ := path.Get(root, pp)
	return value.Clone(v)
}

// Field returns a copy of the descriptor registered at p.
func (e *Engine) Field(p string) (field.Descriptor, bool) {
	pp, err := path.Parse(p)
	if err != nil {
		return field.Descriptor{}, false
	}
	d, ok := e.fields.Lookup(pp)
	if !ok {
		return field.Descriptor{}, false
	}
	return *d, true
}

// Fields returns the canonical paths of every registered field in
// registration order.
func (e *Engine) Fields() []string {
	all := e.fields.All()
	out := make([]string, len(all))
	for i, d := range all {
		out[i] = d.Key()
	}
	return out
}

// GetDirtyFields returns the canonical paths of registered fields whose
// current value differs from the baseline, in registration order.
func (e *Engine) GetDirtyFields() []string {
	var out []string
	for _, d := range e.fields.All() {
		if d.IsDirty {
			out = append(out, d.Key())
		}
	}
	return out
}

// GetStatus returns the form-level flags. IsValid counts suppressed errors,
// so an untouched required field keeps the form invalid.
func (e *Engine) GetStatus() Status {
	return Status{
		IsDirty:     len(e.GetDirtyFields()) > 0,
		IsSubmitted: e.submitted,
		SubmitCount: e.submitCount,
		IsValid:     e.errors.Len() == 0,
	}
}

// recomputeDirty refreshes IsDirty on every descriptor.
func (e *Engine) recomputeDirty() {
	for _, d := range e.fields.All() {
		cur, _ := path.Get(e.current, d.Path)
		init, _ := path.Get(e.initial, d.Path)
		d.IsDirty = !value.Equal(cur, init)
	}
}
