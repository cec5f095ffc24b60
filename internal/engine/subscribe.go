package engine

import (
	"maps"
	"strings"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/errstore"
	"github.com/slayermass/stateform/internal/path"
	"github.com/slayermass/stateform/internal/value"
)

// Subscription listens to one path. The empty path is the whole form.
type Subscription struct {
	e   *Engine
	raw string
	key string
}

// Subscribe returns a subscription for p. Paths written with bracket
// indices hear the bracket-notation events, dot paths the dot ones; both
// fire for every change.
func (e *Engine) Subscribe(p string) *Subscription {
	return &Subscription{e: e, raw: p, key: subscriptionKey(p)}
}

// subscriptionKey normalizes p to the notation the engine emits.
func subscriptionKey(p string) string {
	pp, err := path.Parse(p)
	if err != nil {
		return p
	}
	if strings.Contains(p, "[") {
		return pp.Bracket()
	}
	return pp.String()
}

// Path returns the path the subscription was created with.
func (s *Subscription) Path() string {
	return s.raw
}

// On calls fn with its own copy of the new value after every change at the
// path. The returned function detaches the listener; calling it again is a
// no-op.
func (s *Subscription) On(fn func(value.Value)) func() {
	return s.e.bus.On(s.key, bus.Change, func(ev bus.Event) {
		fn(value.Clone(ev.Value))
	})
}

// OnError calls fn with the visible errors after every error update at the
// path.
func (s *Subscription) OnError(fn func([]errstore.Entry)) func() {
	return s.e.bus.On(s.key, bus.Error, func(ev bus.Event) {
		fn(visible(ev.Errors))
	})
}

func visible(entries []errstore.Entry) []errstore.Entry {
	var out []errstore.Entry
	for _, en := range entries {
		if !en.Suppressed {
			en.Params = maps.Clone(en.Params)
			out = append(out, en)
		}
	}
	return out
}

// MultiSubscription listens to several paths and coalesces notifications:
// however many of its paths change in one unit of work, the callback runs
// once, after the unit settles, with the current value of every path.
type MultiSubscription struct {
	e     *Engine
	paths []string
}

// SubscribeMany returns a coalescing subscription over paths.
func (e *Engine) SubscribeMany(paths ...string) *MultiSubscription {
	return &MultiSubscription{e: e, paths: append([]string(nil), paths...)}
}

// coalescer tracks one pending delivery per listener.
type coalescer struct {
	pending  bool
	detached bool
}

func (m *MultiSubscription) listen(kind bus.Kind, name string, deliver func()) func() {
	state := &coalescer{}
	schedule := func(bus.Event) {
		if state.pending || state.detached {
			return
		}
		state.pending = true
		m.e.queue.Enqueue(task{
			name: name,
			fn: func() {
				state.pending = false
				if state.detached {
					return
				}
				deliver()
			},
			dropped: func(error) { state.pending = false },
		})
	}

	detaches := make([]func(), 0, len(m.paths))
	seen := make(map[string]bool)
	for _, p := range m.paths {
		key := subscriptionKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		detaches = append(detaches, m.e.bus.On(key, kind, schedule))
	}
	return func() {
		state.detached = true
		for _, d := range detaches {
			d()
		}
	}
}

// On calls fn with copies of every path's value, in subscription order.
func (m *MultiSubscription) On(fn func([]value.Value)) func() {
	return m.listen(bus.Change, "multi-path change delivery", func() {
		fn(m.e.GetValues(m.paths...))
	})
}

// OnError calls fn with every path's visible errors, in subscription order.
func (m *MultiSubscription) OnError(fn func([][]errstore.Entry)) func() {
	return m.listen(bus.Error, "multi-path error delivery", func() {
		fn(m.e.GetErrorsMany(m.paths...))
	})
}
