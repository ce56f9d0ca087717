package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithEnvKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WDA_WEATHER_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Weather.APIKey)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
	assert.True(t, cfg.Display.UseCelsius)
	assert.Equal(t, 8080, cfg.Server.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ProviderKeyAlias(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "alias-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "alias-key", cfg.Weather.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WDA_WEATHER_API_KEY=dotenv-key\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WDA_WEATHER_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.Weather.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "weather.yaml")
	content := `
weather:
  api_key: file-key
location:
  permission_granted: true
  source: fixed
  latitude: 50.45
  longitude: 30.52
display:
  use_celsius: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Weather.APIKey)
	assert.True(t, cfg.Location.PermissionGranted)
	assert.Equal(t, "fixed", cfg.Location.Source)
	assert.InDelta(t, 50.45, cfg.Location.Latitude, 1e-9)
	assert.False(t, cfg.Display.UseCelsius)
	assert.Equal(t, 10, cfg.Weather.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	cfg := NewDefaultConfig()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestValidate_RejectsUnknownLocationSource(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Location.Source = "gps"

	assert.Error(t, cfg.Validate())
}
