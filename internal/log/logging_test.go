package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, LevelTrace, false)).With("device", 1)

	logger.Warn("invalid json", "line", "garbage")
	logger.Log(t.Context(), LevelTrace, "raw")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], " WARN invalid json device=1 line=garbage")
	assert.NotContains(t, lines[0], "\033[")
	assert.Contains(t, lines[1], "TRACE raw")
}

func TestConsoleHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewConsoleHandler(&buf, slog.LevelInfo, true)).Error("boom")
	assert.Contains(t, buf.String(), "\033[31m")
}

func TestLevelSplit(t *testing.T) {
	var out, errOut bytes.Buffer
	h := MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: NewConsoleHandler(&out, slog.LevelDebug, false)},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: NewConsoleHandler(&errOut, slog.LevelError, false)},
	}}
	logger := slog.New(h)

	logger.Debug("hidden detail")
	logger.Info("hello")
	logger.Error("transport lost")

	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "hidden detail")
	assert.NotContains(t, out.String(), "transport lost")
	assert.Contains(t, errOut.String(), "transport lost")
	assert.NotContains(t, errOut.String(), "hello")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	NewRaw(&buf).Log(`{"type":"hello"}`)
	assert.True(t, strings.HasSuffix(buf.String(), " {\"type\":\"hello\"}\n"))

	NewRaw(nil).Log("dropped")
}
