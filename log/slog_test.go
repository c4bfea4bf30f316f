package log

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSLogWithOptions(t *testing.T) {
	logger, err := NewSLogWithOptions(&SLogOptions{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewSLogWithOptions(nil)
	assert.Error(t, err)

	_, err = NewSLogWithOptions(&SLogOptions{Level: "verbose"})
	assert.Error(t, err)

	_, err = NewSLogWithOptions(&SLogOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestSLogFileOutput(t *testing.T) {
	path := "./test_log.log"
	defer os.Remove(path)

	logger, err := NewSLogWithOptions(&SLogOptions{
		Level:  "info",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	logger.Info("hello", "key", "value")
	logger.Debug("dropped by level")
	logger.InfoContext(context.Background(), "with context")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
	assert.Contains(t, string(content), `"key":"value"`)
	assert.NotContains(t, string(content), "dropped by level")
	assert.Contains(t, string(content), "with context")
}

func TestSLogWith(t *testing.T) {
	path := "./test_log_with.log"
	defer os.Remove(path)

	logger, err := NewSLogWithOptions(&SLogOptions{Format: "json", Output: path})
	require.NoError(t, err)

	logger.With("component", "engine").Info("attached")
	logger.WithGroup("database").Info("grouped", "operation", "query")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"component":"engine"`)
	assert.True(t, strings.Contains(string(content), `"database"`))
}

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default())
}
