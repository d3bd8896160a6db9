package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_RedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Info("connecting",
		"uri", "bolt://localhost:7687",
		"password", "hunter2",
		"API_Key", "abc",
		slog.Group("auth_config", slog.String("token", "t0k3n"), slog.String("user", "neo4j")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bolt://localhost:7687", entry["uri"])
	assert.Equal(t, redacted, entry["password"])
	assert.Equal(t, redacted, entry["API_Key"])

	group, ok := entry["auth_config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redacted, group["token"])
	assert.Equal(t, "neo4j", group["user"])
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestNewLogger_RedactsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "text"}, &buf).
		With("secret", "s3cr3t").
		WithGroup("load")

	logger.Debug("batch written", "rows", 1000)
	assert.Contains(t, buf.String(), "secret="+redacted)
	assert.Contains(t, buf.String(), "load.rows=1000")
	assert.NotContains(t, buf.String(), "s3cr3t")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, LoggingConfig{Level: in}.SlogLevel(), in)
	}
}
