package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("market closed", "market", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "market closed", line["msg"])
	assert.Equal(t, "abc", line["market"])
}

func TestNewWritesRotatedFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "fpsaled.log")
	logger, closer, err := New(config.LogConfig{Level: "info", Format: "text", File: file, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Info("applied")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=applied")
	assert.Contains(t, buf.String(), "msg=applied")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
