// Copyright 2025 Skillbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads process configuration for the skillbridge server.
//
// Precedence, highest first: environment variables, the YAML config file,
// built-in defaults. The API key additionally falls back to the OS keychain
// when neither env nor file provides one. Missing required configuration is
// fatal at startup, before any tool is registered.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	sberrors "github.com/skillbridge/skillbridge/pkg/errors"
)

// Environment variables read at startup.
const (
	EnvAPIKey    = "SKILLBRIDGE_API_KEY"
	EnvBaseURL   = "SKILLBRIDGE_API_URL"
	EnvTimeoutMs = "SKILLBRIDGE_TIMEOUT_MS"
	EnvLogLevel  = "SKILLBRIDGE_LOG_LEVEL"
)

// Defaults applied when neither env nor file sets a value.
const (
	DefaultBaseURL   = "http://localhost:3001/api/v1"
	DefaultTimeoutMs = 30000
	DefaultLogLevel  = "info"
)

// Config is the resolved process configuration.
type Config struct {
	// APIKey authenticates against the skills API. Required.
	APIKey string `yaml:"api_key"`

	// BaseURL is the skills API endpoint including the version prefix.
	BaseURL string `yaml:"base_url"`

	// TimeoutMs bounds each outbound request, in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Timeout returns the request deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// APIKeySource supplies an API key from a credential store. Implemented by
// secrets.Keychain; nil disables the fallback.
type APIKeySource interface {
	GetAPIKey() (string, error)
}

// DefaultPath returns the default config file location
// (~/.config/skillbridge/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "skillbridge", "config.yaml")
}

// Load resolves configuration from the file at path (empty means the default
// location, missing default file is not an error), the environment, and the
// optional keychain fallback for the API key. All failures are *ConfigError
// and fatal to the caller.
func Load(path string, keychain APIKeySource) (*Config, error) {
	cfg := &Config{
		BaseURL:   DefaultBaseURL,
		TimeoutMs: DefaultTimeoutMs,
		LogLevel:  DefaultLogLevel,
	}

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := loadFile(path, cfg, explicit); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvTimeoutMs); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, &sberrors.ConfigError{Key: "timeout_ms", Reason: fmt.Sprintf("%s is not an integer: %q", EnvTimeoutMs, v), Cause: err}
		}
		cfg.TimeoutMs = ms
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if cfg.APIKey == "" && keychain != nil {
		key, err := keychain.GetAPIKey()
		if err == nil {
			cfg.APIKey = key
		}
		// NotFound and unavailable both fall through to the required-key
		// check below; any stored key is simply absent.
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFileOnly reads only the config file at path, skipping environment,
// keychain, and validation. Used for inspection commands.
func LoadFileOnly(path string) (*Config, error) {
	cfg := &Config{}
	if err := loadFile(path, cfg, true); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return &sberrors.ConfigError{Key: "config_file", Reason: fmt.Sprintf("cannot read %s", path), Cause: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &sberrors.ConfigError{Key: "config_file", Reason: fmt.Sprintf("invalid YAML in %s", path), Cause: err}
	}
	return nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return &sberrors.ConfigError{
			Key:    "api_key",
			Reason: fmt.Sprintf("no API key configured: set %s, add api_key to the config file, or run 'skillbridge auth set-key'", EnvAPIKey),
		}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() {
		return &sberrors.ConfigError{Key: "base_url", Reason: fmt.Sprintf("%q is not a valid absolute URL", c.BaseURL), Cause: err}
	}
	if c.TimeoutMs <= 0 {
		return &sberrors.ConfigError{Key: "timeout_ms", Reason: fmt.Sprintf("must be > 0, got %d", c.TimeoutMs)}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &sberrors.ConfigError{Key: "log_level", Reason: fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", c.LogLevel)}
	}
	return nil
}
