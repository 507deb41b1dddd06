package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error":   LogLevelError,
		"WARN":    LogLevelWarn,
		"warning": LogLevelWarn,
		" debug ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(LogLevelWarn, &buf)

	l.Info("hidden")
	l.Warn("skipping dataset %s", "iris")
	l.Error("failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] skipping dataset iris")
	assert.Contains(t, out, "[ERROR] failed")

	buf.Reset()
	l.SetLevel(LogLevelTrace)
	assert.Equal(t, LogLevelTrace, l.Level())
	l.Debug("d")
	l.Trace("t")
	assert.Contains(t, buf.String(), "[DEBUG] d")
	assert.Contains(t, buf.String(), "[TRACE] t")
}
