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
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillbridge/skillbridge/internal/api"
)

// secretKeyWarning accompanies every create_api_key result. The full key is
// shown exactly once; the adapter never caches or re-displays it.
const secretKeyWarning = "Store this key now. It is shown only in this response and cannot be retrieved again."

// apiKeyCreatedPayload is the result of create_api_key. Key holds the full
// secret value; this is the only payload that ever contains it.
type apiKeyCreatedPayload struct {
	Success bool       `json:"success"`
	APIKey  api.APIKey `json:"apiKey"`
	Key     string     `json:"key"`
	Warning string     `json:"warning"`
}

// apiKeyListPayload is the result of list_api_keys. Entries carry the
// non-secret prefix and metadata only.
type apiKeyListPayload struct {
	Success bool         `json:"success"`
	APIKeys []api.APIKey `json:"apiKeys"`
}

// apiKeyDeletedPayload carries the identity of the revoked key.
type apiKeyDeletedPayload struct {
	Success bool       `json:"success"`
	Deleted api.APIKey `json:"deleted"`
}

// registerAuthTools registers the three API key tools.
func (s *Server) registerAuthTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_api_key",
		Description: "Create a new API key. IMPORTANT: the full key value appears only in this tool's result and can never be retrieved again.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Key name (1-200 characters)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "What the key is for",
				},
				"expiresAt": map[string]interface{}{
					"type":        "string",
					"description": "Expiry as an RFC3339 timestamp (e.g. 2027-01-01T00:00:00Z)",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleCreateAPIKey)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_api_keys",
		Description: "List API keys. Results contain the non-secret key prefix and metadata only, never the full key value.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListAPIKeys)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_api_key",
		Description: "Revoke an API key. Clients still using it will be rejected immediately.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "API key id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleDeleteAPIKey)
}

// handleCreateAPIKey implements the create_api_key tool.
func (s *Server) handleCreateAPIKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResponse("Missing or invalid 'name' argument"), nil
	}
	if errRes := validateName(name); errRes != nil {
		return errRes, nil
	}

	req := api.CreateAPIKeyRequest{
		Name:        name,
		Description: request.GetString("description", ""),
	}
	if expiresAt := request.GetString("expiresAt", ""); expiresAt != "" {
		if errRes := validateTimestamp("expiresAt", expiresAt); errRes != nil {
			return errRes, nil
		}
		req.ExpiresAt = expiresAt
	}

	created, err := s.api.CreateAPIKey(ctx, req)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(apiKeyCreatedPayload{
		Success: true,
		APIKey:  created.APIKey,
		Key:     created.Key,
		Warning: secretKeyWarning,
	}), nil
}

// handleListAPIKeys implements the list_api_keys tool.
func (s *Server) handleListAPIKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := s.api.ListAPIKeys(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if keys == nil {
		keys = []api.APIKey{}
	}

	return jsonResponse(apiKeyListPayload{Success: true, APIKeys: keys}), nil
}

// handleDeleteAPIKey implements the delete_api_key tool.
func (s *Server) handleDeleteAPIKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	key, err := s.api.DeleteAPIKey(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(apiKeyDeletedPayload{Success: true, Deleted: *key}), nil
}
