package logger

import (
	"os"
	"path/filepath"
	"testing"

	"coinwatch/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestNewRejectsUnknownLevel
func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

// go test -v --run TestNewWritesRotatedFile
func TestNewWritesRotatedFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "logs", "coinwatch.log")

	log, err := New(config.LogConfig{Level: "info", Format: "json", OutputFile: out})
	require.NoError(t, err)

	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
