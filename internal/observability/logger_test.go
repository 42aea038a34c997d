// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icesdict/dictscraper/internal/config"
)

// syncBuffer adapts a bytes.Buffer into a zapcore.WriteSyncer so tests can
// capture console output without touching process stdio.
type syncBuffer struct {
	bytes.Buffer
}

func (s *syncBuffer) Sync() error { return nil }

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "dictscraper-test",
	}
}

func TestInitialize_ConsoleOutput(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(testLoggerConfig(), &buf)

	GetLogger().Info("hello from the test")

	out := buf.String()
	assert.Contains(t, out, "hello from the test")
	assert.Contains(t, out, "dictscraper-test.", "logger name should be rendered with its dot suffix")
	assert.Contains(t, out, "INFO")
}

func TestInitialize_RespectsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "warn"

	var buf syncBuffer
	Initialize(cfg, &buf)

	GetLogger().Info("suppressed")
	GetLogger().Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "visible")
}

func TestInitialize_InvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "not-a-level"

	var buf syncBuffer
	Initialize(cfg, &buf)

	GetLogger().Debug("suppressed at info")
	GetLogger().Info("visible at info")

	out := buf.String()
	assert.NotContains(t, out, "suppressed at info")
	assert.Contains(t, out, "visible at info")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second syncBuffer
	Initialize(testLoggerConfig(), &first)
	Initialize(testLoggerConfig(), &second)

	GetLogger().Info("goes to the first writer")
	assert.Contains(t, first.String(), "goes to the first writer")
	assert.Empty(t, second.String(), "second Initialize must be a no-op")
}

func TestInitialize_FileCoreWritesJSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logFile := filepath.Join(t.TempDir(), "test.log")
	cfg := testLoggerConfig()
	cfg.LogFile = logFile

	var buf syncBuffer
	Initialize(cfg, &buf)

	GetLogger().Info("structured entry", zap.String("key", "value"))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	// The file core is JSON regardless of the console format.
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "structured entry", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestGetLogger_BeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Must return a usable fallback, never nil.
	assert.NotNil(t, GetLogger())
}
