package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserConfig represents user preferences stored in ~/.fretplan/config.json.
// This file stores ONLY preferences, never credentials.
type UserConfig struct {
	// Default company to scope CLI commands to when --company-id is not given
	DefaultCompanyID string `json:"default_company_id,omitempty"`

	// Default output format for report commands: "text" or "json"
	DefaultOutput string `json:"default_output,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a new user config handler
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &UserConfigHandler{
		configPath: filepath.Join(homeDir, ".fretplan", "config.json"),
	}, nil
}

// Load reads the user config from disk. A missing file is not an error,
// it reads as empty preferences.
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &cfg, nil
}

// Save writes the user config to disk, creating ~/.fretplan on first use
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(h.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetDefaultCompany sets the default company ID
func (h *UserConfigHandler) SetDefaultCompany(companyID string) error {
	return h.update(func(cfg *UserConfig) {
		cfg.DefaultCompanyID = companyID
	})
}

// ClearDefaultCompany removes the default company setting
func (h *UserConfigHandler) ClearDefaultCompany() error {
	return h.update(func(cfg *UserConfig) {
		cfg.DefaultCompanyID = ""
	})
}

func (h *UserConfigHandler) update(mutate func(*UserConfig)) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}

	mutate(cfg)
	return h.Save(cfg)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
