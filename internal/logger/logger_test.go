package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink unavailable")
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := NewFanoutHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	l := slog.New(h).With("component", "test")

	l.Info("position updated", "symbol", "AAPL")
	l.Warn("quote cache unavailable")

	assert.Contains(t, debugBuf.String(), "position updated")
	assert.Contains(t, debugBuf.String(), "component=test")
	assert.NotContains(t, warnBuf.String(), "position updated")
	assert.Contains(t, warnBuf.String(), "quote cache unavailable")
}

func TestFanoutHandlerEnabled(t *testing.T) {
	h := NewFanoutHandler(
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestFanoutHandlerKeepsWritingAfterError(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, nil)
	h := NewFanoutHandler(failingHandler{Handler: text}, text)

	l := slog.New(h)
	l.Info("still logged")

	assert.Contains(t, buf.String(), "still logged")
}

func TestNewWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("visible", "user.id", 7)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "user.id=7")
}
