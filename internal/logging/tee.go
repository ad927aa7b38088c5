package logging

import (
	"context"
	"log/slog"
)

// teeHandler sends each record to the console and to the JSON log file.
// Each sink keeps its own level, so a record reaches only the sinks that
// enable it.
type teeHandler struct {
	sinks []slog.Handler
}

// teeLogger returns a logger writing through base and every extra handler.
func teeLogger(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	sinks := make([]slog.Handler, 0, len(extra)+1)
	if base != nil {
		sinks = append(sinks, base.Handler())
	}
	for _, h := range extra {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return NewNop()
	case 1:
		return slog.New(sinks[0])
	}
	return slog.New(&teeHandler{sinks: sinks})
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range t.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	last := len(t.sinks) - 1
	for i, sink := range t.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		// handlers may retain the record; the last sink can take the original
		rec := record
		if i < last {
			rec = record.Clone()
		}
		if err := sink.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) *teeHandler {
	next := make([]slog.Handler, len(t.sinks))
	for i, sink := range t.sinks {
		next[i] = fn(sink)
	}
	return &teeHandler{sinks: next}
}
