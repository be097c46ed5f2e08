package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const instrumentationName = "ctchen222/portfolio-tracker"

// FanoutHandler is a slog.Handler that dispatches records to multiple handlers.
type FanoutHandler struct {
	handlers []slog.Handler
}

// NewFanoutHandler creates a new FanoutHandler.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

// Enabled reports whether any of the underlying handlers handles level.
func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a clone of r to every handler enabled for its level.
// All handlers are tried; their errors are joined.
func (h *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a new FanoutHandler whose handlers have the given attributes.
func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return NewFanoutHandler(next...)
}

// WithGroup returns a new FanoutHandler whose handlers have the given group.
func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return NewFanoutHandler(next...)
}

// New builds a logger writing text records to w and, through the otelslog
// bridge, to the global OpenTelemetry logger provider.
func New(w io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	otelHandler := otelslog.NewHandler(instrumentationName)

	return slog.New(NewFanoutHandler(consoleHandler, otelHandler))
}

// Init installs New(os.Stdout, level) as the default slog logger.
// Call it after telemetry has set the global logger provider.
func Init(level slog.Level) *slog.Logger {
	l := New(os.Stdout, level)
	slog.SetDefault(l)
	return l
}
