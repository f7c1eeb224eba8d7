// Package config handles configuration for chatterm.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the user configuration
type Config struct {
	// APIURL is the base URL of the chat persistence service.
	APIURL string `json:"api_url"`
	// GenBaseURL is the base URL of the response generation service.
	// Any OpenAI-compatible endpoint works; empty means the default
	// OpenAI endpoint.
	GenBaseURL string `json:"gen_base_url,omitempty"`
	// GenModel is the model name sent to the generation service.
	GenModel string `json:"gen_model"`
	// TimeoutSeconds is the per-request timeout for persistence calls.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIURL:         "http://localhost:4000",
		GenModel:       "gpt-4o-mini",
		TimeoutSeconds: 30,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatterm"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides: CHAT_API_URL, CHAT_GEN_URL, CHAT_GEN_MODEL.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil // Use defaults if config doesn't exist
		}
		return applyEnv(cfg), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("CHAT_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("CHAT_GEN_URL"); v != "" {
		cfg.GenBaseURL = v
	}
	if v := os.Getenv("CHAT_GEN_MODEL"); v != "" {
		cfg.GenModel = v
	}
	return cfg
}

// APIKey returns the generation service API key. Kept out of the config
// file; local OpenAI-compatible servers accept an empty key.
func APIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
