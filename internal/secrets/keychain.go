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

// Package secrets stores the skills API key in the operating system
// keychain so it does not have to live in shell profiles or config files.
//
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// keychainService is the service name used for keychain entries.
	keychainService = "skillbridge"

	// apiKeyName is the keychain entry holding the skills API key.
	apiKeyName = "api-key"
)

// ErrNotFound is returned when no API key is stored in the keychain.
var ErrNotFound = errors.New("api key not found in keychain")

// ErrUnavailable is returned when the keychain service cannot be reached,
// for example a locked keyring or a headless host without a secret service.
var ErrUnavailable = errors.New("keychain service unavailable")

// Keychain provides access to the stored skills API key.
type Keychain struct {
	available bool
}

// NewKeychain creates a keychain store. It probes availability up front so
// callers can fall through to other credential sources cleanly.
func NewKeychain() *Keychain {
	k := &Keychain{available: true}

	// Probe with a key that never exists: NotFound means the service
	// answered, anything else means it is unreachable.
	_, err := keyring.Get(keychainService, "__skillbridge_availability_probe__")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		k.available = false
	}

	return k
}

// Available reports whether the keychain service is accessible.
func (k *Keychain) Available() bool {
	return k.available
}

// GetAPIKey retrieves the stored skills API key.
func (k *Keychain) GetAPIKey() (string, error) {
	if !k.available {
		return "", ErrUnavailable
	}

	value, err := keyring.Get(keychainService, apiKeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		if isUnavailableError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("keychain error: %w", err)
	}

	return value, nil
}

// SetAPIKey stores the skills API key.
func (k *Keychain) SetAPIKey(value string) error {
	if !k.available {
		return ErrUnavailable
	}

	if err := keyring.Set(keychainService, apiKeyName, value); err != nil {
		if isUnavailableError(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("keychain error: %w", err)
	}

	return nil
}

// DeleteAPIKey removes the stored skills API key.
func (k *Keychain) DeleteAPIKey() error {
	if !k.available {
		return ErrUnavailable
	}

	if err := keyring.Delete(keychainService, apiKeyName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		if isUnavailableError(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("keychain error: %w", err)
	}

	return nil
}

// isUnavailableError checks if an error indicates the keychain is locked or
// inaccessible, using common error text across platforms.
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	indicators := []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	}

	for _, indicator := range indicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
