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

package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeychain_RoundTrip(t *testing.T) {
	// In-memory provider so the test never touches the host keychain.
	keyring.MockInit()

	k := NewKeychain()
	if !k.Available() {
		t.Fatal("mock keychain should be available")
	}

	if _, err := k.GetAPIKey(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}

	if err := k.SetAPIKey("sk-test-123"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}

	got, err := k.GetAPIKey()
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if got != "sk-test-123" {
		t.Errorf("GetAPIKey = %q, want %q", got, "sk-test-123")
	}

	if err := k.DeleteAPIKey(); err != nil {
		t.Fatalf("DeleteAPIKey failed: %v", err)
	}

	if _, err := k.GetAPIKey(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIsUnavailableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"locked keyring", errors.New("keyring is locked"), true},
		{"dbus failure", errors.New("dial unix: dbus socket missing"), true},
		{"unrelated", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUnavailableError(tt.err); got != tt.expected {
				t.Errorf("isUnavailableError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
