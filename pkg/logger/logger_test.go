package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(LogOption{Format: "json", LogDir: dir, Level: "debug"}))

	Infof("[test] hello %d", 1)
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[test] hello 1")
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogOption{Level: "verbose"})
	assert.Error(t, err)
}
