package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EVODASH_CONFIG", "")
	t.Setenv("EVODASH_SERVER_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	require.Equal(t, 30, cfg.Server.TimeoutSeconds)
	require.Equal(t, "dark", cfg.UI.Theme)
	require.Equal(t, "info", cfg.Log.Level)
	require.Contains(t, cfg.Auth.TokenPath, "evodash")
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[server]
base_url = "https://evo.example.com"
timeout_seconds = 10

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("EVODASH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://evo.example.com", cfg.Server.BaseURL)
	require.Equal(t, 10, cfg.Server.TimeoutSeconds)
	require.Equal(t, "light", cfg.UI.Theme)
	// untouched keys keep defaults
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nbase_url = \"https://file.example.com\"\n"), 0o644))
	t.Setenv("EVODASH_CONFIG", path)
	t.Setenv("EVODASH_SERVER_BASE_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Server.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("EVODASH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.Theme = "light"
	cfg.Server.BaseURL = "https://saved.example.com"
	require.NoError(t, Save(cfg))

	reloaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "light", reloaded.UI.Theme)
	require.Equal(t, "https://saved.example.com", reloaded.Server.BaseURL)
}
