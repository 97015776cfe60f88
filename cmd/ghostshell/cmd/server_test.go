package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ssargent/ghostshell/pkg/config"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	dirs := newTestDirs(t)

	output, err := executeCommand(t, "init", "--config", dirs.config, "--data-dir", dirs.data, "--print-key")
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration created")
	assert.FileExists(t, dirs.config)
	assert.DirExists(t, dirs.data)

	cfg, err := config.LoadConfig(dirs.config)
	require.NoError(t, err)
	assert.Equal(t, dirs.data, cfg.DataDir)
	assert.Len(t, cfg.Security.APIKey, 64)
	assert.Contains(t, output, cfg.Security.APIKey)

	t.Run("existing config is kept", func(t *testing.T) {
		output, err := executeCommand(t, "init", "--config", dirs.config)
		require.NoError(t, err)
		assert.Contains(t, output, "already exists")

		again, err := config.LoadConfig(dirs.config)
		require.NoError(t, err)
		assert.Equal(t, cfg.Security.APIKey, again.Security.APIKey)
	})

	t.Run("force regenerates the key", func(t *testing.T) {
		_, err := executeCommand(t, "init", "--config", dirs.config, "--data-dir", dirs.data, "--force")
		require.NoError(t, err)

		again, err := config.LoadConfig(dirs.config)
		require.NoError(t, err)
		assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
	})
}

func TestServeCommand(t *testing.T) {
	starter := withRecordingServer(t)
	dirs := newTestDirs(t)

	cfg := config.DefaultConfig()
	cfg.DataDir = dirs.data
	cfg.Security.APIKey = "from-config"
	cfg.Codec.Format = "tiff"
	cfg.Storage.Retention = time.Hour
	require.NoError(t, config.SaveConfig(cfg, dirs.config))

	output, err := executeCommand(t, "serve", "--config", dirs.config, "--port", "9123")
	require.NoError(t, err, output)
	require.Equal(t, 1, starter.calls)

	assert.Equal(t, 9123, starter.config.Port)
	assert.Equal(t, "127.0.0.1", starter.config.Bind)
	assert.Equal(t, "from-config", starter.config.APIKey)
	assert.Equal(t, raster.TIFF, starter.config.DefaultFormat)
	assert.Equal(t, time.Hour, starter.config.Retention)
	assert.DirExists(t, filepath.Join(dirs.data, "images"))

	_, err = executeCommand(t, "serve", "--config", dirs.config, "--api-key", "from-flag", "--bind", "0.0.0.0")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", starter.config.APIKey)
	assert.Equal(t, "0.0.0.0", starter.config.Bind)
	assert.Equal(t, 8080, starter.config.Port)
}

func TestServeCommand_GeneratesKeyWhenAuto(t *testing.T) {
	starter := withRecordingServer(t)
	dirs := newTestDirs(t)

	output, err := executeCommand(t, "serve", "--config", dirs.config, "--data-dir", dirs.data)
	require.NoError(t, err)
	assert.Len(t, starter.config.APIKey, 64)
	assert.NotEqual(t, "auto", starter.config.APIKey)

	// The key is printed for the operator once and never passed to the logger.
	assert.Equal(t, 1, strings.Count(output, starter.config.APIKey))
	assert.Contains(t, output, "API key for this run: "+starter.config.APIKey)
	assert.NotContains(t, output, "api_key=")
}

func TestServeCommand_InvalidFormat(t *testing.T) {
	withRecordingServer(t)
	dirs := newTestDirs(t)

	cfg := config.DefaultConfig()
	cfg.DataDir = dirs.data
	cfg.Codec.Format = "jpeg"
	require.NoError(t, config.SaveConfig(cfg, dirs.config))

	_, err := executeCommand(t, "serve", "--config", dirs.config)
	assert.ErrorIs(t, err, raster.ErrLossyFormat)
}

func TestUpCommand(t *testing.T) {
	starter := withRecordingServer(t)
	dirs := newTestDirs(t)

	output, err := executeCommand(t, "up", "--config", dirs.config, "--data-dir", dirs.data, "--print-key")
	require.NoError(t, err, output)
	assert.Contains(t, output, "First run detected")

	cfg, err := config.LoadConfig(dirs.config)
	require.NoError(t, err)
	assert.Equal(t, dirs.data, cfg.DataDir)
	assert.Equal(t, cfg.Security.APIKey, starter.config.APIKey)
	assert.Contains(t, output, cfg.Security.APIKey)

	output, err = executeCommand(t, "up", "--config", dirs.config, "--port", "9000")
	require.NoError(t, err)
	assert.Contains(t, output, "Loaded existing configuration")
	assert.Equal(t, cfg.Security.APIKey, starter.config.APIKey)
	assert.Equal(t, 9000, starter.config.Port)
	assert.Equal(t, 2, starter.calls)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	dirs := newTestDirs(t)
	in := writeCarrier(t, dirs.root, 4, 4, 0x00)

	_, err := executeCommand(t, "capacity", "--config", dirs.config, "--log-level", "loud", "-i", in)
	assert.Error(t, err)
}
