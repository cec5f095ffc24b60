package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/bus"
	"github.com/slayermass/stateform/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, defaults any, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithIDGenerator(testutil.NewSequenceGenerator("id")),
		WithLogger(quietLogger()),
	}
	e, err := New(defaults, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// eventLog records every emitted event via an observer.
type eventLog struct {
	events []bus.Event
}

func (l *eventLog) OnEvent(ev bus.Event) {
	l.events = append(l.events, ev)
}

func (l *eventLog) reset() {
	l.events = nil
}

// paths returns the paths of recorded events of kind k, in emit order.
func (l *eventLog) paths(k bus.Kind) []string {
	var out []string
	for _, ev := range l.events {
		if ev.Kind == k {
			out = append(out, ev.Path)
		}
	}
	return out
}
