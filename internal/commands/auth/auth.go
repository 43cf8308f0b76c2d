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

// Package auth implements the 'skillbridge auth' command group for managing
// the locally stored skills API key.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillbridge/skillbridge/internal/commands/shared"
	"github.com/skillbridge/skillbridge/internal/config"
	"github.com/skillbridge/skillbridge/internal/secrets"
)

var authForce bool

// NewCommand creates the auth command for API key management.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored skills API key",
		Long: `Manage the skills API key used to authenticate against the remote service.

The key is resolved at startup with this precedence:
  1. SKILLBRIDGE_API_KEY environment variable
  2. Config file (~/.config/skillbridge/config.yaml)
  3. System keychain (macOS Keychain, Linux Secret Service, Windows Credential Manager)

Commands:
  set-key    Store the API key in the system keychain
  status     Show where the key would be resolved from
  clear-key  Remove the key from the system keychain

Examples:
  skillbridge auth set-key
  echo "sk_live_..." | skillbridge auth set-key
  skillbridge auth status
  skillbridge auth clear-key --force`,
	}

	cmd.AddCommand(newSetKeyCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newClearKeyCommand())

	return cmd
}

func newSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key in the system keychain",
		Long: `Store the skills API key securely in the system keychain.

The key can be provided via:
  - Interactive prompt (hidden input, default)
  - Standard input: echo "sk_live_..." | skillbridge auth set-key`,
		Args: cobra.NoArgs,
		RunE: runSetKey,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API key would be resolved from",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func newClearKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the API key from the system keychain",
		Args:  cobra.NoArgs,
		RunE:  runClearKey,
	}

	cmd.Flags().BoolVar(&authForce, "force", false, "Skip confirmation prompt")

	return cmd
}

func runSetKey(cmd *cobra.Command, args []string) error {
	value, err := readKeyValue()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if value == "" {
		return errors.New("API key cannot be empty")
	}

	kc := secrets.NewKeychain()
	if err := kc.SetAPIKey(value); err != nil {
		if errors.Is(err, secrets.ErrUnavailable) {
			return shared.NewKeychainError(
				fmt.Sprintf("system keychain unavailable\n\nTry:\n  1. Set the environment variable: export %s=<value>\n  2. Add api_key to %s", config.EnvAPIKey, config.DefaultPath()),
				err)
		}
		return shared.NewKeychainError("failed to store API key", err)
	}

	cmd.Printf("API key %s stored in system keychain\n", maskKey(value))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	type source struct {
		Name    string `json:"name"`
		Present bool   `json:"present"`
		Detail  string `json:"detail,omitempty"`
	}

	kc := secrets.NewKeychain()

	var statuses []source

	if v := os.Getenv(config.EnvAPIKey); v != "" {
		statuses = append(statuses, source{Name: "environment", Present: true, Detail: maskKey(v)})
	} else {
		statuses = append(statuses, source{Name: "environment", Present: false})
	}

	cfgPath := shared.GetConfigPath()
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	fileStatus := source{Name: "config file", Detail: cfgPath}
	if fileKey := readFileKey(cfgPath); fileKey != "" {
		fileStatus.Present = true
		fileStatus.Detail = fmt.Sprintf("%s (%s)", maskKey(fileKey), cfgPath)
	}
	statuses = append(statuses, fileStatus)

	keychainStatus := source{Name: "keychain"}
	if !kc.Available() {
		keychainStatus.Detail = "unavailable"
	} else if key, err := kc.GetAPIKey(); err == nil {
		keychainStatus.Present = true
		keychainStatus.Detail = maskKey(key)
	}
	statuses = append(statuses, keychainStatus)

	if shared.GetJSON() {
		return printJSON(cmd, statuses)
	}

	cmd.Printf("%-12s %-8s %s\n", "SOURCE", "KEY", "DETAIL")
	for _, s := range statuses {
		present := "-"
		if s.Present {
			present = "set"
		}
		cmd.Printf("%-12s %-8s %s\n", s.Name, present, s.Detail)
	}
	return nil
}

func runClearKey(cmd *cobra.Command, args []string) error {
	if !authForce {
		cmd.Print("Remove the API key from the system keychain? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			cmd.Println("Canceled")
			return nil
		}
	}

	kc := secrets.NewKeychain()
	if err := kc.DeleteAPIKey(); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			cmd.Println("No API key stored in system keychain")
			return nil
		}
		return shared.NewKeychainError("failed to remove API key", err)
	}

	cmd.Println("API key removed from system keychain")
	return nil
}

// readKeyValue reads the API key from stdin or prompts the user.
func readKeyValue() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}

	if (stat.Mode() & os.ModeCharDevice) == 0 {
		// Reading from pipe
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	// Interactive prompt with hidden input
	fmt.Print("Enter API key (hidden): ")
	byteKey, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(byteKey)), nil
}

// readFileKey extracts api_key from the config file without failing status
// on a missing or malformed file.
func readFileKey(path string) string {
	if path == "" {
		return ""
	}
	cfg, err := config.LoadFileOnly(path)
	if err != nil {
		return ""
	}
	return cfg.APIKey
}

// maskKey masks an API key for display.
func maskKey(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
