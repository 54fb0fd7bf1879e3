package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-copilot/common/middleware"
)

func TestNew_Format(t *testing.T) {
	tests := []struct {
		name   string
		format string
		isJSON bool
	}{
		{name: "json format", format: "json", isJSON: true},
		{name: "text format", format: "TEXT", isJSON: false},
		{name: "default format is json", format: "", isJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Options{Format: tt.format, Writer: &buf})

			logger.Info("hello")

			var decoded map[string]any
			err := json.Unmarshal(buf.Bytes(), &decoded)
			if tt.isJSON {
				require.NoError(t, err)
				assert.Equal(t, "hello", decoded["msg"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}

func TestNew_Service(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Service: "copilot", Writer: &buf})

	logger.Info("started")

	assert.Contains(t, buf.String(), `"service":"copilot"`)
}

func TestRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf}).With(IP("10.0.0.5"))

	logger.InfoContext(middleware.WithRequestID(context.Background(), "req-123"), "investigate")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"ip":"10.0.0.5"`)

	buf.Reset()
	logger.InfoContext(context.Background(), "investigate")
	assert.NotContains(t, buf.String(), FieldRequestID)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Writer: &buf})
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	assert.Empty(t, buf.String())

	logger.WarnContext(ctx, "warn message")
	assert.Contains(t, buf.String(), "WARN")

	buf.Reset()
	logger.ErrorContext(ctx, "error message", Error(assert.AnError))
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{" Error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	logger.ErrorContext(context.Background(), "dropped")
}
