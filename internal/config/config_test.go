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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sberrors "github.com/skillbridge/skillbridge/pkg/errors"
)

// fakeKeychain implements APIKeySource for tests.
type fakeKeychain struct {
	key string
	err error
}

func (f *fakeKeychain) GetAPIKey() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvTimeoutMs, "")
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvAPIKey)
	os.Unsetenv(EnvBaseURL)
	os.Unsetenv(EnvTimeoutMs)
	os.Unsetenv(EnvLogLevel)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "sk-env")

	cfg, err := Load(writeConfigFile(t, ""), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", cfg.APIKey)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfigFile(t, ""), nil)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}

	var cfgErr *sberrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if cfgErr.Key != "api_key" {
		t.Errorf("Key = %q, want api_key", cfgErr.Key)
	}
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
api_key: sk-file
base_url: https://skills.example.com/api/v1
timeout_ms: 5000
log_level: debug
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey != "sk-file" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://skills.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "api_key: sk-file\ntimeout_ms: 5000\n")
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvTimeoutMs, "1000")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey != "sk-env" {
		t.Errorf("env should win over file, got %q", cfg.APIKey)
	}
	if cfg.TimeoutMs != 1000 {
		t.Errorf("TimeoutMs = %d, want 1000", cfg.TimeoutMs)
	}
}

func TestLoad_KeychainFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfigFile(t, ""), &fakeKeychain{key: "sk-keychain"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-keychain" {
		t.Errorf("APIKey = %q, want sk-keychain", cfg.APIKey)
	}
}

func TestLoad_EnvWinsOverKeychain(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "sk-env")

	cfg, err := Load(writeConfigFile(t, ""), &fakeKeychain{key: "sk-keychain"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", cfg.APIKey)
	}
}

func TestLoad_KeychainErrorFallsThrough(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfigFile(t, ""), &fakeKeychain{err: errors.New("locked")})
	if err == nil {
		t.Fatal("expected missing-key error when keychain fails")
	}
	var cfgErr *sberrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "api_key" {
		t.Fatalf("expected api_key ConfigError, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
	}{
		{"non-numeric timeout", map[string]string{EnvAPIKey: "k", EnvTimeoutMs: "abc"}, "timeout_ms"},
		{"zero timeout", map[string]string{EnvAPIKey: "k", EnvTimeoutMs: "0"}, "timeout_ms"},
		{"negative timeout", map[string]string{EnvAPIKey: "k", EnvTimeoutMs: "-5"}, "timeout_ms"},
		{"relative base url", map[string]string{EnvAPIKey: "k", EnvBaseURL: "/api/v1"}, "base_url"},
		{"bad log level", map[string]string{EnvAPIKey: "k", EnvLogLevel: "chatty"}, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(writeConfigFile(t, ""), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr *sberrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestLoad_ExplicitMissingFileIsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "k")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err == nil {
		t.Fatal("explicitly named missing config file should fail")
	}
	var cfgErr *sberrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "config_file" {
		t.Fatalf("expected config_file ConfigError, got %v", err)
	}
}
