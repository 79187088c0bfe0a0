// Package config resolves client settings from the environment, an optional
// .env file, and the user-level settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey reports that no credential could be resolved from any
// source.
var ErrMissingAPIKey = errors.New("config: no API key found")

const (
	envAPIKey     = "OPENAI_API_KEY"
	envBaseURL    = "OPENAI_BASE_URL"
	envModel      = "POEMAI_MODEL"
	envMaxRetries = "POEMAI_MAX_RETRIES"
	envTimeout    = "POEMAI_TIMEOUT_SECONDS"
	envBaseDelay  = "POEMAI_BASE_DELAY_SECONDS"

	settingsDir  = ".poemai"
	settingsFile = "settings.yaml"
	// legacyKeyFile is the plain-text credential location older setups used.
	legacyKeyFile = "openai_api_key.txt"
)

// Settings holds the resolved client configuration.
type Settings struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Model            string  `yaml:"model"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	MaxRetries       int     `yaml:"max_retries"`
	BaseDelaySeconds float64 `yaml:"base_delay_seconds"`
}

// Timeout converts the configured per-attempt timeout, 0 when unset.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// BaseDelay converts the configured backoff base delay, 0 when unset.
func (s Settings) BaseDelay() time.Duration {
	return time.Duration(s.BaseDelaySeconds * float64(time.Second))
}

// Load resolves settings with environment variables taking precedence over
// the user settings file. A .env file in the working directory is folded
// into the environment first; a missing one is fine. The legacy
// ~/openai_api_key.txt is consulted as a last resort for the credential.
func Load() (Settings, error) {
	_ = godotenv.Load()

	settings, err := readSettingsFile(userSettingsPath())
	if err != nil {
		return Settings{}, err
	}

	if v := strings.TrimSpace(os.Getenv(envAPIKey)); v != "" {
		settings.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(envBaseURL)); v != "" {
		settings.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envModel)); v != "" {
		settings.Model = v
	}
	if v, ok := envInt(envMaxRetries); ok {
		settings.MaxRetries = v
	}
	if v, ok := envInt(envTimeout); ok {
		settings.TimeoutSeconds = v
	}
	if v, ok := envFloat(envBaseDelay); ok {
		settings.BaseDelaySeconds = v
	}

	if settings.APIKey == "" {
		settings.APIKey = readLegacyKeyFile(legacyKeyPath())
	}
	if settings.APIKey == "" {
		return Settings{}, ErrMissingAPIKey
	}
	return settings, nil
}

// userSettingsPath returns the location of the user-level settings file,
// "" when no home directory can be determined.
func userSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, settingsDir, settingsFile)
}

func legacyKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, legacyKeyFile)
}

func readSettingsFile(path string) (Settings, error) {
	var settings Settings
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return settings, nil
}

func readLegacyKeyFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
