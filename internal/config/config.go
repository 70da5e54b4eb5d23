// Package config handles configuration for the AceAI client.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables recognized at startup. The API key is env-only and
// never written to disk.
const (
	EnvAPIKey   = "ACEAI_API_KEY"
	EnvAPIURL   = "ACEAI_API_URL"
	EnvAuthURL  = "ACEAI_AUTH_URL"
	EnvRedisURL = "ACEAI_REDIS_URL"
)

// Config represents the user configuration.
type Config struct {
	// APIURL is the base URL of the OpenAI-compatible completions endpoint.
	APIURL string `json:"api_url"`
	// Model is the completions model id requested for every turn.
	Model string `json:"model"`
	// Temperature is the sampling temperature for every turn.
	Temperature float64 `json:"temperature"`
	// AuthURL is the base URL of the identity provider. Empty disables
	// sign-in; the client runs guest-only.
	AuthURL string `json:"auth_url,omitempty"`
	// RedisURL points at the remote chat store. Empty disables remote
	// persistence; chats live in the local cache only.
	RedisURL string `json:"redis_url,omitempty"`
	// Verbose enables detailed output during operations.
	Verbose bool `json:"verbose"`
	// MarkdownStyle selects the glamour style for assistant output.
	MarkdownStyle string `json:"markdown_style,omitempty"`
	// ExportDir is where exported chats are written. Defaults to the
	// working directory.
	ExportDir string `json:"export_dir,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		APIURL:        "https://api.groq.com/openai/v1",
		Model:         "deepseek-r1-distill-llama-70b",
		Temperature:   0.6,
		Verbose:       false,
		MarkdownStyle: "dark",
	}
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".aceai"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the session token.
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetSessionPath returns the path to the persisted identity session.
func GetSessionPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "session.json"), nil
}

// LoadConfig reads the config file, applying defaults for a missing file
// and environment overrides on top.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
	}
	return applyEnv(cfg), nil
}

// SaveConfig writes the config file.
func SaveConfig(cfg Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// APIKey reads the completions API key from the environment.
func APIKey() (string, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return "", fmt.Errorf("missing API key: set %s", EnvAPIKey)
	}
	return key, nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvAuthURL); v != "" {
		cfg.AuthURL = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.RedisURL = v
	}
	return cfg
}
