package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
	assert.NotNil(t, logger.debug)
}

func TestLogger_Prefixes(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithOutput(&out, &errOut)

	logger.Info("session %s confirmed", "abc")
	logger.Warn("queue unavailable")
	logger.Error("upstream failed: %d", 502)

	assert.Contains(t, out.String(), "INFO: ")
	assert.Contains(t, out.String(), "session abc confirmed")
	assert.Contains(t, out.String(), "WARN: queue unavailable")
	assert.Contains(t, errOut.String(), "ERROR: ")
	assert.Contains(t, errOut.String(), "upstream failed: 502")
	assert.NotContains(t, out.String(), "upstream failed")
}

func TestLogger_DebugDisabledByDefault(t *testing.T) {
	var out bytes.Buffer
	logger := NewWithOutput(&out, &out)

	logger.Debug("hidden %d", 1)
	assert.Empty(t, out.String())

	logger.SetDebug(true)
	logger.Debug("shown %d", 2)
	assert.Contains(t, out.String(), "DEBUG: ")
	assert.Contains(t, out.String(), "shown 2")
}

func TestLogger_Formatting(t *testing.T) {
	var out bytes.Buffer
	logger := NewWithOutput(&out, &out)

	logger.Info("Post %d moved to %s", 42, "approved")
	logger.Error("Failed to process request %d: %s", 404, "not found")

	assert.Contains(t, out.String(), "Post 42 moved to approved")
	assert.Contains(t, out.String(), "Failed to process request 404: not found")
}
