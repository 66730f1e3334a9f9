package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/progressforms/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions_FileFanout(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closeFn, err := logging.NewWithOptions(logging.Options{
		Level:  slog.LevelDebug,
		Writer: &buf,
		File:   path,
	})
	require.NoError(t, err)

	logger.Debug("advanced", "from", "A", "error", errors.New("boom"))
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), "msg=advanced")
	assert.Contains(t, buf.String(), "err=boom")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &rec))
	assert.Equal(t, "advanced", rec["msg"])
	assert.Equal(t, "A", rec["from"])
	assert.Equal(t, "boom", rec["err"])
}

func TestNewWithOptions_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.NewWithOptions(logging.Options{Level: slog.LevelWarn, Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("whatever"))
}
