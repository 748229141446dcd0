package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsreader/internal/handler/http/requestid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: " DEBUG ", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_FromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	logger := NewLogger()

	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", slog.String("country", "us"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "us", entry["country"])
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, slog.LevelDebug)

	logger.Debug("fetching page", slog.Int("page", 2))

	assert.Contains(t, buf.String(), "fetching page")
	assert.Contains(t, buf.String(), "page=2")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, slog.LevelInfo)

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, base).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}

func TestWithRequestID_Missing(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, slog.LevelInfo)

	logger := WithRequestID(context.Background(), base)
	logger.Info("hello")

	assert.Same(t, base, logger)
	assert.NotContains(t, buf.String(), "request_id")
}

func TestFromContext(t *testing.T) {
	t.Run("stored logger", func(t *testing.T) {
		logger := NewJSONLogger(&bytes.Buffer{}, slog.LevelInfo)
		ctx := WithLogger(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerContextKey, "not a logger")
		assert.Equal(t, slog.Default(), FromContext(ctx))
	})
}
