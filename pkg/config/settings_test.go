package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp directory and clears all recognized
// environment variables so each test starts from a blank slate.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{envAPIKey, envBaseURL, envModel, envMaxRetries, envTimeout, envBaseDelay} {
		t.Setenv(key, "")
	}
	return home
}

func writeSettings(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, settingsDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte(content), 0o600))
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(envAPIKey, "sk-env")
	t.Setenv(envBaseURL, "https://gateway.example.com")
	t.Setenv(envModel, "gpt-4o")
	t.Setenv(envMaxRetries, "5")
	t.Setenv(envTimeout, "30")
	t.Setenv(envBaseDelay, "0.5")

	settings, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-env", settings.APIKey)
	require.Equal(t, "https://gateway.example.com", settings.BaseURL)
	require.Equal(t, "gpt-4o", settings.Model)
	require.Equal(t, 5, settings.MaxRetries)
	require.Equal(t, 30*time.Second, settings.Timeout())
	require.Equal(t, 500*time.Millisecond, settings.BaseDelay())
}

func TestLoadFromSettingsFile(t *testing.T) {
	home := isolate(t)
	writeSettings(t, home, "api_key: sk-file\nmodel: gpt-4o-mini\ntimeout_seconds: 15\n")

	settings, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-file", settings.APIKey)
	require.Equal(t, "gpt-4o-mini", settings.Model)
	require.Equal(t, 15*time.Second, settings.Timeout())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	home := isolate(t)
	writeSettings(t, home, "api_key: sk-file\nmodel: gpt-4o-mini\n")
	t.Setenv(envAPIKey, "sk-env")
	t.Setenv(envModel, "gpt-4o")

	settings, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-env", settings.APIKey)
	require.Equal(t, "gpt-4o", settings.Model)
}

func TestLoadLegacyKeyFile(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, legacyKeyFile), []byte("sk-legacy\n"), 0o600))

	settings, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-legacy", settings.APIKey)
}

func TestLoadMissingAPIKey(t *testing.T) {
	isolate(t)

	_, err := Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestLoadMalformedSettingsFile(t *testing.T) {
	home := isolate(t)
	writeSettings(t, home, "api_key: [broken\n")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestZeroSettingsDurations(t *testing.T) {
	var settings Settings
	require.Zero(t, settings.Timeout())
	require.Zero(t, settings.BaseDelay())
}
