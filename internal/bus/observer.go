package bus

import (
	"context"
	"log/slog"

	"github.com/slayermass/stateform/internal/value"
)

// Observer sees every event a bus emits, after its listeners ran.
type Observer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

// SlogObserver writes each event as a debug record.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver returns an observer logging to logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ev Event) {
	attrs := []slog.Attr{
		slog.Int64("seq", ev.Seq),
		slog.String("path", ev.Path),
	}
	switch ev.Kind {
	case Change:
		attrs = append(attrs, slog.String("value_kind", string(value.KindOf(ev.Value))))
	case Error:
		attrs = append(attrs, slog.Int("errors", len(ev.Errors)))
	}
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, "form."+string(ev.Kind), attrs...)
}
