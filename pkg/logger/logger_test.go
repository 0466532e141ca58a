package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info")

	log.Debug("should be filtered")
	assert.Zero(t, buf.Len(), "debug should not pass info level")

	log.Info("hello")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hello", entry["message"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{
		"code":  "sh.600000",
		"score": 64.5,
	}).Debug("scored")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "sh.600000", entry["code"])
	assert.Equal(t, 64.5, entry["score"])
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.WithError(errors.New("boom")).Error("failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_ParseLevelFallback(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("unknown-level"))
}
