package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, log.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, log.LevelError, ParseLogLevel(" error "))
	assert.Equal(t, log.LevelInfo, ParseLogLevel(""))
	assert.Equal(t, log.LevelInfo, ParseLogLevel("verbose"))
}

func TestSetupLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	closer, err := SetupLogger("info", path)
	require.NoError(t, err)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	assert.FileExists(t, path)
	require.NoError(t, closer.Close())
}
