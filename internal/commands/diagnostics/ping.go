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

// Package diagnostics implements connectivity checks against the skills API.
package diagnostics

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillbridge/skillbridge/internal/api"
	"github.com/skillbridge/skillbridge/internal/commands/shared"
	"github.com/skillbridge/skillbridge/internal/config"
	"github.com/skillbridge/skillbridge/internal/secrets"
	sberrors "github.com/skillbridge/skillbridge/pkg/errors"
)

// PingResult contains the ping health check result
type PingResult struct {
	BaseURL       string `json:"base_url"`
	Configured    bool   `json:"configured"`
	Reachable     bool   `json:"reachable"`
	Authenticated bool   `json:"authenticated"`
	Healthy       bool   `json:"healthy"`
	LatencyMs     int64  `json:"latency_ms,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorStep     string `json:"error_step,omitempty"`
}

// NewPingCommand creates the ping command
func NewPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "ping",
		Annotations: map[string]string{
			"group": "diagnostics",
		},
		Short: "Quick health check for the skills API",
		Long: `Test connectivity and authentication with the skills API.

This performs a lightweight three-step check:
  1. Configured - an API key and endpoint are resolved
  2. Reachable - the service answers within the request timeout
  3. Authenticated - the API key is accepted

Exit codes:
  0 - Service is healthy
  1 - Service has issues`,
		Args: cobra.NoArgs,
		RunE: runPing,
	}

	return cmd
}

func runPing(cmd *cobra.Command, args []string) error {
	result := pingService(cmd.Context())

	if shared.GetJSON() {
		return outputPingJSON(cmd, result)
	}
	return outputPingText(cmd, result)
}

// pingService resolves config and issues one cheap authenticated request.
func pingService(ctx context.Context) PingResult {
	var result PingResult

	cfg, err := config.Load(shared.GetConfigPath(), secrets.NewKeychain())
	if err != nil {
		result.Error = err.Error()
		result.ErrorStep = "configured"
		return result
	}
	result.Configured = true
	result.BaseURL = cfg.BaseURL

	client, err := api.New(api.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		result.Error = err.Error()
		result.ErrorStep = "configured"
		return result
	}

	start := time.Now()
	_, _, err = client.ListSkills(ctx, api.SkillListOptions{Limit: 1})
	result.LatencyMs = time.Since(start).Milliseconds()

	switch {
	case err == nil:
		result.Reachable = true
		result.Authenticated = true
		result.Healthy = true
	case sberrors.IsTimeout(err), sberrors.IsNetwork(err):
		result.Error = err.Error()
		result.ErrorStep = "reachable"
	default:
		// The service answered; an API error here means the key was refused
		// or the endpoint is wrong.
		result.Reachable = true
		result.Error = err.Error()
		result.ErrorStep = "authenticated"
	}

	return result
}

// outputPingJSON outputs ping result in JSON format
func outputPingJSON(cmd *cobra.Command, result PingResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))

	if !result.Healthy {
		os.Exit(1)
	}
	return nil
}

// outputPingText outputs ping result in human-readable format
func outputPingText(cmd *cobra.Command, result PingResult) error {
	cmd.Printf("Testing skills API: %s\n", result.BaseURL)
	cmd.Println()

	cmd.Printf("  Configured:    %s\n", checkMark(result.Configured))
	cmd.Printf("  Reachable:     %s\n", checkMark(result.Reachable))
	cmd.Printf("  Authenticated: %s\n", checkMark(result.Authenticated))

	if result.LatencyMs > 0 {
		cmd.Printf("  Latency:       %dms\n", result.LatencyMs)
	}

	cmd.Println()

	if result.Healthy {
		cmd.Println("Status: Healthy")
	} else {
		cmd.Println("Status: Failed")
		if result.Error != "" {
			cmd.Printf("Error: %s\n", result.Error)
		}
	}

	if !result.Healthy {
		os.Exit(1)
	}

	return nil
}

func checkMark(ok bool) string {
	if ok {
		return "✓ yes"
	}
	return "✗ no"
}
