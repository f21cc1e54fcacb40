package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	output = buf
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	defer SetLevel("INFO")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	defer SetFormat("text")

	Info("structured message", "store", "billing", "version", 3)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "structured message", entry["msg"])
	assert.Equal(t, "billing", entry["store"])
	assert.Equal(t, float64(3), entry["version"])
}

func TestInvalidLevelIgnored(t *testing.T) {
	SetLevel("INFO")
	SetLevel("VERBOSE")
	assert.Equal(t, int32(LevelInfo), currentLevel.Load())
}

func TestInvalidFormatIgnored(t *testing.T) {
	SetFormat("text")
	SetFormat("xml")
	format, _ := currentFormat.Load().(string)
	assert.Equal(t, "text", format)
}

func TestConcurrentLogging(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Info("concurrent", "iteration", j)
			}
		}()
	}
	wg.Wait()
}

func TestCloseWithoutFile(t *testing.T) {
	require.NoError(t, Close())
}

func TestFileOutputFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))

	Info("written before close")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written before close")
}

func TestCloseRebuildsHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
	require.NoError(t, Close())

	// The handler must target stdout again, not the closed file.
	mu.RLock()
	w := output
	mu.RUnlock()
	assert.Equal(t, os.Stdout, w)

	buf, cleanup := captureOutput()
	defer cleanup()
	Info("written after close")
	assert.Contains(t, buf.String(), "written after close")
}
