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

package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skillbridge/skillbridge/internal/api"
	"github.com/skillbridge/skillbridge/internal/commands/shared"
	"github.com/skillbridge/skillbridge/internal/config"
	"github.com/skillbridge/skillbridge/internal/mcp/server"
	"github.com/skillbridge/skillbridge/internal/secrets"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var (
		transport string
		listen    string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the Skillbridge MCP server",
		Long: `Start the Skillbridge MCP (Model Context Protocol) server.

The server exposes the skills API as tools that AI assistants (Claude Code,
Cursor, Gemini CLI) can call: listing and editing skills, managing
connections, inspecting execution history, and rotating API keys.

The server runs in stdio mode by default, which is suitable for integration
with AI assistants via their MCP configuration.

Configuration example for Claude Code (~/.config/claude/config.json):
  {
    "mcpServers": {
      "skillbridge": {
        "command": "skillbridge",
        "args": ["mcp-server"],
        "env": {"SKILLBRIDGE_API_KEY": "..."}
      }
    }
  }

The API key is resolved from SKILLBRIDGE_API_KEY, the config file, or the
system keychain ('skillbridge auth set-key'). The server refuses to start
without one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer(cmd, transport, listen, logLevel)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to serve on (stdio, http)")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8391", "Listen address for the http transport")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Logging verbosity (debug, info, warn, error); overrides config")

	return cmd
}

func runMCPServer(cmd *cobra.Command, transport, listen, logLevel string) error {
	if transport != "stdio" && transport != "http" {
		return fmt.Errorf("invalid transport: %s (must be stdio or http)", transport)
	}

	// Resolve configuration; keychain is the lowest-priority key source.
	cfg, err := config.Load(shared.GetConfigPath(), secrets.NewKeychain())
	if err != nil {
		return shared.NewConfigError("failed to load configuration", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	client, err := api.New(api.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		return shared.NewConfigError("failed to create API client", err)
	}

	versionStr, _, _ := shared.GetVersion()

	srv, err := server.NewServer(server.ServerConfig{
		Name:     "skillbridge",
		Version:  versionStr,
		LogLevel: logLevel,
		Client:   client,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if transport == "http" {
		if err := srv.RunHTTP(ctx, listen); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
