package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Format: FormatJSON}, &buf)
	l = ComponentLogger(l, "engine")
	l.Debug().Str("pollutant", "CO2").Msg("resolved")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "engine", event["component"])
	assert.Equal(t, "CO2", event["pollutant"])
	assert.Equal(t, "resolved", event["message"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "warn", Format: FormatJSON}, &buf)
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestFromContext(t *testing.T) {
	t.Run("falls back to global", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		assert.NotEqual(t, zerolog.Disabled, l.GetLevel())
	})

	t.Run("uses attached logger and trace id", func(t *testing.T) {
		var buf bytes.Buffer
		attached := NewLogger(Config{Level: "info", Format: FormatJSON}, &buf)
		ctx := attached.WithContext(context.Background())
		ctx = ContextWithTraceID(ctx, "trace-1")

		FromContext(ctx).Info().Msg("hello")

		var event map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
		assert.Equal(t, "trace-1", event["trace_id"])
	})
}

func TestGetOrGenerateTraceID(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "existing")
	assert.Equal(t, "existing", GetOrGenerateTraceID(ctx))

	generated := GetOrGenerateTraceID(context.Background())
	assert.Len(t, generated, 26)
	assert.NotEqual(t, generated, GetOrGenerateTraceID(context.Background()))
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ghgfreight.log")
		res := NewLoggerWithPath(Config{Level: "info", Format: FormatJSON, Output: OutputFile, File: path})
		defer func() { require.NoError(t, res.Close()) }()

		assert.True(t, res.UsingFile)
		assert.Equal(t, path, res.FilePath)
		assert.False(t, res.FallbackUsed)
	})

	t.Run("unwritable file falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "x.log")
		res := NewLoggerWithPath(Config{Output: OutputFile, File: path})
		assert.False(t, res.UsingFile)
		assert.True(t, res.FallbackUsed)
		assert.NotEmpty(t, res.FallbackReason)
	})

	t.Run("file output without path", func(t *testing.T) {
		res := NewLoggerWithPath(Config{Output: OutputFile})
		assert.True(t, res.FallbackUsed)
	})
}
