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
	"github.com/spf13/cobra"

	"github.com/skillbridge/skillbridge/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for Skillbridge
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skillbridge",
		Short: "Skillbridge - MCP adapter for the skills automation API",
		Long: `Skillbridge exposes a workflow-automation service to AI assistants
over the Model Context Protocol (MCP). It translates MCP tool calls into
REST requests against the skills API: managing skills, connections,
execution history, and API keys.

Run 'skillbridge mcp-server' to start the adapter.
Run 'skillbridge auth set-key' to store the API key in the system keychain.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/skillbridge/config.yaml)")

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
