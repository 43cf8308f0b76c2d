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

package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillbridge/skillbridge/internal/api"
	"github.com/skillbridge/skillbridge/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	maxNameLength    = 200
	maxIDLength      = 128
)

// validationError builds a failure result for input that violates its schema.
// It is produced before any network call.
func validationError(field, message string) *mcp.CallToolResult {
	verr := &errors.ValidationError{Field: field, Message: message}
	return errorResponse(verr.Error())
}

// requireID extracts a required identifier argument.
func requireID(request mcp.CallToolRequest, field string) (string, *mcp.CallToolResult) {
	id, err := request.RequireString(field)
	if err != nil {
		return "", errorResponse(fmt.Sprintf("Missing or invalid '%s' argument", field))
	}
	if id == "" {
		return "", validationError(field, "must be non-empty")
	}
	if len(id) > maxIDLength {
		return "", validationError(field, fmt.Sprintf("must be at most %d characters", maxIDLength))
	}
	if strings.ContainsAny(id, " \t\n") {
		return "", validationError(field, "must not contain whitespace")
	}
	return id, nil
}

// listWindow extracts limit/offset with their documented defaults (50, 0)
// and bounds.
func listWindow(request mcp.CallToolRequest) (int, int, *mcp.CallToolResult) {
	limit := request.GetInt("limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		return 0, 0, validationError("limit", fmt.Sprintf("must be between 1 and %d", maxListLimit))
	}
	offset := request.GetInt("offset", 0)
	if offset < 0 {
		return 0, 0, validationError("offset", "must be >= 0")
	}
	return limit, offset, nil
}

// validateName checks the shared name constraint (non-blank, bounded length).
func validateName(name string) *mcp.CallToolResult {
	if strings.TrimSpace(name) == "" {
		return validationError("name", "must be non-empty")
	}
	if len(name) > maxNameLength {
		return validationError("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	return nil
}

// validTriggerType reports whether s is one of the enumerated trigger types.
func validTriggerType(s string) bool {
	switch s {
	case api.TriggerManual, api.TriggerScheduled, api.TriggerWebhook:
		return true
	}
	return false
}

// validExecutionStatus reports whether s is one of the enumerated statuses.
func validExecutionStatus(s string) bool {
	switch s {
	case api.StatusRunning, api.StatusCompleted, api.StatusFailed:
		return true
	}
	return false
}

// validateTimestamp checks an RFC3339 timestamp string argument.
func validateTimestamp(field, value string) *mcp.CallToolResult {
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return validationError(field, fmt.Sprintf("must be an RFC3339 timestamp, got %q", value))
	}
	return nil
}

// parseSteps converts the raw steps argument into validated step inputs.
// Step order is preserved exactly as supplied.
func parseSteps(raw any) ([]api.SkillStepInput, *mcp.CallToolResult) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, validationError("steps", "must be an array of step objects")
	}
	var steps []api.SkillStepInput
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, validationError("steps", "must be an array of step objects")
	}
	if len(steps) == 0 {
		return nil, validationError("steps", "must contain at least one step")
	}

	seen := make(map[int]bool, len(steps))
	for i, step := range steps {
		if step.ID < 1 {
			return nil, validationError("steps", fmt.Sprintf("step %d: id must be a positive integer", i))
		}
		if seen[step.ID] {
			return nil, validationError("steps", fmt.Sprintf("step id %d is duplicated", step.ID))
		}
		seen[step.ID] = true
		if strings.TrimSpace(step.Prompt) == "" {
			return nil, validationError("steps", fmt.Sprintf("step %d: prompt must be non-empty", i))
		}
	}

	return steps, nil
}

// toStringSlice converts a raw array argument into []string.
func toStringSlice(field string, raw any) ([]string, *mcp.CallToolResult) {
	items, ok := raw.([]any)
	if !ok {
		return nil, validationError(field, "must be an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, validationError(field, "must be an array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// toObject converts a raw object argument into a map.
func toObject(field string, raw any) (map[string]any, *mcp.CallToolResult) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, validationError(field, "must be an object")
	}
	return m, nil
}

// toBool converts a raw boolean argument.
func toBool(field string, raw any) (bool, *mcp.CallToolResult) {
	b, ok := raw.(bool)
	if !ok {
		return false, validationError(field, "must be a boolean")
	}
	return b, nil
}

// toString converts a raw string argument.
func toString(field string, raw any) (string, *mcp.CallToolResult) {
	s, ok := raw.(string)
	if !ok {
		return "", validationError(field, "must be a string")
	}
	return s, nil
}
