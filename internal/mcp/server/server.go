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

// Package server implements the MCP server that exposes the skills API as
// callable tools: skills, connections, executions, and API key management.
//
// Every tool follows the same contract: validate input against its declared
// schema, make exactly one API call, and shape the result into a structured
// payload. All per-call failures are reported in the tool result; no error
// ever crosses into the MCP framework.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillbridge/skillbridge/internal/api"
)

// Server wraps the MCP server and provides skills API tools.
type Server struct {
	mcpServer *server.MCPServer
	api       *api.Client
	name      string
	version   string
	logger    *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "skillbridge")
	Name string

	// Version is the skillbridge version
	Version string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// Client is the skills API client used by every tool. Required.
	Client *api.Client
}

// createLogger creates a logger with the specified log level.
// Writes to stderr to avoid interfering with MCP stdio protocol.
func createLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level

	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), nil
}

// NewServer creates a new MCP server instance with all 20 tools registered.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("skills API client is required")
	}
	if config.Name == "" {
		config.Name = "skillbridge"
	}
	if config.Version == "" {
		config.Version = "dev"
	}

	logger, err := createLogger(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions("This MCP server exposes a workflow-automation service. "+
			"Skills are stored automation workflows, connections hold integration credentials, "+
			"executions are historical run records, and API keys control access. "+
			"Use patch tools for partial changes; update tools replace the whole resource."),
	)

	s := &Server{
		mcpServer: mcpServer,
		api:       config.Client,
		name:      config.Name,
		version:   config.Version,
		logger:    logger,
	}

	s.registerSkillTools()
	s.registerConnectionTools()
	s.registerExecutionTools()
	s.registerAuthTools()

	return s, nil
}

// MCPServer returns the underlying mcp-go server instance (useful for testing).
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting skillbridge MCP server", slog.String("version", s.version), slog.String("transport", "stdio"))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// RunHTTP starts the MCP server on the given address using the streamable
// HTTP transport. It blocks until the context is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	s.logger.Info("starting skillbridge MCP server", slog.String("version", s.version), slog.String("transport", "http"), slog.String("addr", addr))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	}
}

// errorResponse creates a recoverable failure result. The message is the
// only content; for remote failures it is the service's own error text.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// toolError converts a client error into a failure result.
func toolError(err error) *mcp.CallToolResult {
	return errorResponse(err.Error())
}

// textResponse creates a success result with plain text content.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// jsonResponse marshals the payload as indented JSON text content.
func jsonResponse(payload any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResponse(string(data))
}
