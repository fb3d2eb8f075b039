// config.go - Configuration for the pool demo daemon.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config represents the daemon configuration. File values are
// overridden by POOLD_* environment variables.
type Config struct {
	// Demo scenario settings
	AssetName   string `json:"asset_name" envconfig:"ASSET_NAME"`
	MintValue   uint64 `json:"mint_value" envconfig:"MINT_VALUE"`
	SendValue   uint64 `json:"send_value" envconfig:"SEND_VALUE"`
	Fee         uint64 `json:"fee" envconfig:"FEE"`
	SkipProving bool   `json:"skip_proving" envconfig:"SKIP_PROVING"`

	// File paths
	KeyDir string `json:"key_dir" envconfig:"KEY_DIR"`

	// Ledger policy
	MaxRootAge uint64 `json:"max_root_age" envconfig:"MAX_ROOT_AGE"`

	// Logging
	LogLevel string `json:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AssetName:  "POOL",
		MintValue:  10,
		SendValue:  7,
		Fee:        1,
		KeyDir:     "keys",
		MaxRootAge: 64,
		LogLevel:   "info",
	}
}

// LoadConfig loads configuration from file (creating the default when
// missing) and applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	} else if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	if err := envconfig.Process("poold", config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return config, config.Validate()
}

// SaveConfig saves configuration to file.
func SaveConfig(config *Config, configPath string) error {
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(config)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MintValue == 0 {
		return fmt.Errorf("mint_value must be positive")
	}
	if c.SendValue+c.Fee > c.MintValue {
		return fmt.Errorf("send_value plus fee must not exceed mint_value")
	}
	if c.KeyDir == "" {
		return fmt.Errorf("key_dir must be set")
	}
	return nil
}
