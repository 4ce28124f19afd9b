package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 500, cfg.Fetch.InitialBackoffMs)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, "extraction_log.json", cfg.Generation.LogPath)
	assert.Equal(t, 300, cfg.Flags.TTLSeconds)
	assert.Equal(t, "mod-packages", cfg.Storage.Bucket)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("FETCH_MAX_ATTEMPTS", "5")
	t.Setenv("GENERATION_TARGET_ROOT", "/games/custom")
	t.Setenv("TOOLS_PATH", "/usr/bin/vpk")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, "/games/custom", cfg.Generation.TargetRoot)
	assert.Equal(t, "/usr/bin/vpk", cfg.Tools.Path)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\nFLAGS_URL=https://flags.example/flags.json\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("FLAGS_URL")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "https://flags.example/flags.json", cfg.Flags.URL)
}
