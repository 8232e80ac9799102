package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFailsWithoutSecrets(t *testing.T) {
	t.Setenv("GYMDESK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GYMDESK_SERVICE_URL", "")
	t.Setenv("GYMDESK_SERVICE_ANON_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "service.url")
}

func TestLoadFailsWithoutAnonKey(t *testing.T) {
	t.Setenv("GYMDESK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GYMDESK_SERVICE_URL", "https://proj.example.co")
	t.Setenv("GYMDESK_SERVICE_ANON_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "anon_key")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GYMDESK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GYMDESK_SERVICE_URL", "https://proj.example.co")
	t.Setenv("GYMDESK_SERVICE_ANON_KEY", "anon-123")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://proj.example.co", c.Service.URL)
	require.Equal(t, "anon-123", c.Service.AnonKey)
	require.Equal(t, "Gymdesk", c.UI.GymName)
	require.NotEmpty(t, c.Cache.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[service]
url = "https://file.example.co"
anon_key = "file-key"

[ui]
gym_name = "Iron Temple"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("GYMDESK_CONFIG", path)
	t.Setenv("GYMDESK_SERVICE_URL", "")
	t.Setenv("GYMDESK_SERVICE_ANON_KEY", "")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://file.example.co", c.Service.URL)
	require.Equal(t, "file-key", c.Service.AnonKey)
	require.Equal(t, "Iron Temple", c.UI.GymName)
}
