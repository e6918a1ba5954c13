package jsonlog

import (
	"DiningApi/internal/assert"
	"bytes"
	json2 "encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json2.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log entry is not JSON: %v (%s)", err, buf.String())
	}
	return entry
}

func TestPrintInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	logger.PrintInfo("starting server", map[string]string{"addr": ":8008", "env": "development"})

	entry := decode(t, &buf)
	assert.Equal(t, entry["level"].(string), "INFO")
	assert.Equal(t, entry["msg"].(string), "starting server")
	props := entry["properties"].(map[string]any)
	assert.Equal(t, props["addr"].(string), ":8008")
	assert.Equal(t, props["env"].(string), "development")
	if _, ok := entry["trace"]; ok {
		t.Error("info entries must not carry a trace")
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	logger.PrintError(errors.New("upload failed"), nil)

	entry := decode(t, &buf)
	assert.Equal(t, entry["level"].(string), "ERROR")
	assert.Equal(t, entry["msg"].(string), "upload failed")
	assert.StringContains(t, entry["trace"].(string), "goroutine")
}

func TestMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelError)

	logger.PrintInfo("dropped", nil)
	assert.Equal(t, buf.Len(), 0)

	logger.PrintError(errors.New("kept"), nil)
	assert.StringContains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, ParseLevel("error"), LevelError)
	assert.Equal(t, ParseLevel("off"), LevelOff)
	assert.Equal(t, ParseLevel("anything"), LevelInfo)
}
