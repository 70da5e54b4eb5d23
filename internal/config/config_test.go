package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "deepseek-r1-distill-llama-70b" {
		t.Errorf("Model = %s", cfg.Model)
	}
	if cfg.Temperature != 0.6 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.APIURL == "" {
		t.Error("APIURL should have a default")
	}
}

func TestAPIKey_Missing(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	if _, err := APIKey(); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKey_FromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	key, err := APIKey()
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("key = %s", key)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://proxy.example.com/v1")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")
	t.Setenv(EnvAuthURL, "")

	cfg := applyEnv(DefaultConfig())
	if cfg.APIURL != "https://proxy.example.com/v1" {
		t.Errorf("APIURL = %s", cfg.APIURL)
	}
	if cfg.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %s", cfg.RedisURL)
	}
	if cfg.AuthURL != "" {
		t.Errorf("AuthURL = %s, want empty", cfg.AuthURL)
	}
}
