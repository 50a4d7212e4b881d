package utils

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := formatLine("INFO", "Classified", "class", "pet", "file", "my photo.jpg", "dangling")

	assert.Contains(t, line, "] INFO: Classified")
	assert.Contains(t, line, " class=pet")
	assert.Contains(t, line, ` file="my photo.jpg"`)
	assert.Contains(t, line, " dangling=(missing)")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestLogger_NoopBeforeInit(t *testing.T) {
	Close()
	assert.NotPanics(t, func() {
		Info("not initialized", "k", "v")
	})
	assert.Empty(t, LogPath())
}

func TestLogger_WritesToFile(t *testing.T) {
	Close()
	dir := t.TempDir()
	require.NoError(t, InitLogger(dir))
	t.Cleanup(Close)

	path := LogPath()
	require.NotEmpty(t, path)
	assert.Contains(t, path, LogPrefix+"-")

	Info("submission started", "cycle", "abc")
	Debug("hidden")
	SetDebug(true)
	Debug("visible")
	SetDebug(false)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Logger initialized")
	assert.Contains(t, content, "INFO: submission started cycle=abc")
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "DEBUG: visible")
}
