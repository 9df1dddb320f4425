package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	_, err := New(config.NewDefaultLogConfig())
	require.NoError(t, err)
}

func TestConvertConfig(t *testing.T) {
	tests := []struct {
		name           string
		input          config.LogConfig
		expectedLevel  zerolog.Level
		expectedFormat LogFormat
		expectFile     bool
	}{
		{
			name:           "defaults",
			input:          config.NewDefaultLogConfig(),
			expectedLevel:  zerolog.InfoLevel,
			expectedFormat: FormatConsole,
		},
		{
			name:           "debug json with file",
			input:          config.LogConfig{LogLevel: "DEBUG", LogFormat: "json", LogFile: "app.log"},
			expectedLevel:  zerolog.DebugLevel,
			expectedFormat: FormatJSON,
			expectFile:     true,
		},
		{
			name:           "invalid level falls back to info",
			input:          config.LogConfig{LogLevel: "loud", LogFormat: "weird"},
			expectedLevel:  zerolog.InfoLevel,
			expectedFormat: FormatConsole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConvertConfig(tt.input)
			assert.Equal(t, tt.expectedLevel, cfg.Level)
			assert.Equal(t, tt.expectedFormat, cfg.Format)
			assert.Equal(t, tt.expectFile, cfg.EnableFile)
			assert.Equal(t, config.DefaultMaxLogSizeMB, cfg.MaxSizeMB)
		})
	}
}

func TestBuilder_JSONConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConsoleOutput(&buf).
		WithConfig(config.LogConfig{LogLevel: "info", LogFormat: "json"}).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Str("component", "test").Msg("hello")
	l.GetZerolog().Debug().Msg("filtered")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
}

func TestBuilder_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "checker.log")
	var console bytes.Buffer

	l, err := NewLoggerBuilder().
		WithConsoleOutput(&console).
		WithConfig(config.LogConfig{LogLevel: "info", LogFormat: "json", LogFile: logFile}).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, console.String(), "to file")
}

func TestLogFormat_String(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "console", FormatConsole.String())
	assert.Equal(t, "text", FormatText.String())
	assert.Equal(t, "console", LogFormat(42).String())
}
