package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "querygate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, path, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, &Config{Format: "text", LogLevel: "warn", LogFormat: "text"}, cfg)
}

func TestLoadConfig_File(t *testing.T) {
	file := writeConfig(t, "format: json\nlog_level: debug\ndatabase: bookmarks.db\n")

	cfg, path, err := LoadConfig(file, nil)
	require.NoError(t, err)

	assert.Equal(t, file, path)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "bookmarks.db", cfg.Database)
}

func TestLoadConfig_Precedence(t *testing.T) {
	file := writeConfig(t, "format: json\nlog_level: debug\nlog_format: json\n")
	t.Setenv("QUERYGATE_LOG_LEVEL", "info")
	t.Setenv("QUERYGATE_LOG_FORMAT", "text")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")
	flags.String("log-level", "warn", "")
	flags.String("log-format", "text", "")
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "error", "--config", file}))

	cfg, _, err := LoadConfig(file, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format, "unchanged flag keeps the file value")
	assert.Equal(t, "error", cfg.LogLevel, "changed flag overrides env")
	assert.Equal(t, "text", cfg.LogFormat, "env overrides file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown format",
			content: "format: yaml\n",
			wantErr: `format must be one of [text json], got "yaml"`,
		},
		{
			name:    "unknown log level",
			content: "log_level: trace\n",
			wantErr: `log_level must be one of [debug info warn error], got "trace"`,
		},
		{
			name:    "missing schema dir",
			content: "schema_dir: /does/not/exist\n",
			wantErr: "schema_dir is not a directory",
		},
		{
			name:    "every problem is reported",
			content: "format: xml\nlog_format: logfmt\n",
			wantErr: "format must be one of [text json], got \"xml\"; log_format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "info", LogFormat: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("shown", "entity", "Bookmark")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"entity":"Bookmark"`)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discarding logger")

	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "debug", LogFormat: "text"}, &buf)
	ctx := WithLogger(context.Background(), logger)

	GetLogger(ctx).Debug("from context")
	assert.Contains(t, buf.String(), "from context")
}
