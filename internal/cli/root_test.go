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

package cli

import (
	"testing"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "skillbridge" {
		t.Errorf("expected use 'skillbridge', got %q", cmd.Use)
	}

	if !cmd.SilenceUsage {
		t.Error("expected SilenceUsage to be true")
	}

	if !cmd.SilenceErrors {
		t.Error("expected SilenceErrors to be true")
	}

	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag")
	}

	if cmd.PersistentFlags().Lookup("json") == nil {
		t.Error("expected --json persistent flag")
	}
}

func TestVersionRoundTrip(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-08-30")
	defer SetVersion("dev", "unknown", "unknown")

	v, c, b := GetVersion()
	if v != "1.2.3" || c != "abc123" || b != "2026-08-30" {
		t.Errorf("unexpected version info: %s %s %s", v, c, b)
	}
}
