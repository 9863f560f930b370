package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gymbuddy-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FallsBackToInfoOnUnknownLevel(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "verbose", Encoding: "yaml"})
	require.NoError(t, err)
	require.NotNil(t, l)

	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestNew_DebugLevel(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "DEBUG", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestTokenPrefix(t *testing.T) {
	assert.Equal(t, "short", logger.TokenPrefix("short"))
	assert.Equal(t, "0123456789", logger.TokenPrefix("0123456789"))
	assert.Equal(t, "0123456789...", logger.TokenPrefix("0123456789abcdef"))
}

func TestNew_WritesServiceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	l, err := logger.New(logger.Config{
		Level:      "bogus",
		OutputPath: path,
		Service:    "notifications",
		Env:        "production",
	})
	require.NoError(t, err)
	l.Info("Тест", logger.Token("0123456789abcdef"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var warn map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &warn))
	assert.Equal(t, "WARN", warn["level"])
	assert.Equal(t, "bogus", warn["requested_level"])

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "notifications", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "0123456789...", entry["token_prefix"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
}
