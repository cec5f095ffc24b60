// Package bus is the per-engine publish/subscribe registry mapping
// (path, kind) to listeners.
//
// Keys are raw path strings: a listener on "nested[0].label" only hears
// events emitted on exactly that string. Publishers that want both dot and
// bracket subscribers reached emit on each variant.
package bus

import (
	"log/slog"

	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/value"
)

// Kind is the event channel.
type Kind string

const (
	Change Kind = "change"
	Error  Kind = "error"
)

// FormKey is the reserved key for whole-form events. It is the root path.
const FormKey = ""

// Event is one delivery. Change events carry Value, error events carry
// Errors (suppressed entries included and flagged).
type Event struct {
	Seq    int64
	Path   string
	Kind   Kind
	Value  value.Value
	Errors []errstore.Entry
}

// Listener receives events.
type Listener func(Event)

// IDGenerator mints subscription ids.
type IDGenerator interface {
	Generate() string
}

type key struct {
	path string
	kind Kind
}

type subscription struct {
	id       string
	key      key
	fn       Listener
	detached bool
}

// Bus is not safe for concurrent use; listeners may re-enter it.
type Bus struct {
	subs      map[key][]*subscription
	observers []Observer
	ids       IDGenerator
	clock     *Clock
	logger    *slog.Logger
}

// New returns an empty bus. A nil logger means slog.Default().
func New(ids IDGenerator, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[key][]*subscription),
		ids:    ids,
		clock:  NewClock(),
		logger: logger,
	}
}

// On attaches fn to (path, kind) and returns its detach function. Detach is
// idempotent and safe after Clear.
func (b *Bus) On(path string, kind Kind, fn Listener) (detach func()) {
	sub := &subscription{
		id:  b.ids.Generate(),
		key: key{path: path, kind: kind},
		fn:  fn,
	}
	b.subs[sub.key] = append(b.subs[sub.key], sub)
	b.logger.Debug("subscription attached", "id", sub.id, "path", path, "kind", kind)

	return func() { b.detach(sub) }
}

func (b *Bus) detach(sub *subscription) {
	if sub.detached {
		return
	}
	sub.detached = true

	list := b.subs[sub.key]
	for i, s := range list {
		if s == sub {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.subs, sub.key)
	} else {
		b.subs[sub.key] = list
	}
	b.logger.Debug("subscription detached", "id", sub.id, "path", sub.key.path, "kind", sub.key.kind)
}

// Emit stamps ev with the next sequence number and delivers it to the
// listeners of (ev.Path, ev.Kind) in subscription order, then to observers.
// Listeners detached by an earlier listener during the same emit are skipped.
func (b *Bus) Emit(ev Event) {
	ev.Seq = b.clock.Next()

	list := b.subs[key{path: ev.Path, kind: ev.Kind}]
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)

	for _, sub := range snapshot {
		if sub.detached {
			continue
		}
		sub.fn(ev)
	}
	for _, o := range b.observers {
		o.OnEvent(ev)
	}
}

// Observe registers an observer that sees every emitted event.
func (b *Bus) Observe(o Observer) {
	if o != nil {
		b.observers = append(b.observers, o)
	}
}

// Clear detaches every subscription. Observers stay.
func (b *Bus) Clear() {
	for _, list := range b.subs {
		for _, sub := range list {
			sub.detached = true
		}
	}
	b.subs = make(map[key][]*subscription)
}

// Has reports whether (path, kind) has at least one listener.
func (b *Bus) Has(path string, kind Kind) bool {
	_, ok := b.subs[key{path: path, kind: kind}]
	return ok
}

// Count returns the number of listeners on (path, kind).
func (b *Bus) Count(path string, kind Kind) int {
	return len(b.subs[key{path: path, kind: kind}])
}

// Len returns the number of live (path, kind) keys.
func (b *Bus) Len() int {
	return len(b.subs)
}

// Seq returns the sequence number of the last emitted event.
func (b *Bus) Seq() int64 {
	return b.clock.Current()
}
