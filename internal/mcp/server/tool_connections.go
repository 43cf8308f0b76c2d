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

// connectionListPayload is the result of list_connections.
type connectionListPayload struct {
	Success     bool             `json:"success"`
	Connections []api.Connection `json:"connections"`
	Pagination  *api.Meta        `json:"pagination,omitempty"`
}

// connectionPayload is the result of single-connection operations.
type connectionPayload struct {
	Success    bool           `json:"success"`
	Connection api.Connection `json:"connection"`
}

// connectionDeletedPayload carries the identity of the removed connection.
type connectionDeletedPayload struct {
	Success bool           `json:"success"`
	Deleted api.Connection `json:"deleted"`
}

// registerConnectionTools registers the six connection tools.
func (s *Server) registerConnectionTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_connections",
		Description: "List integration connections with optional filters. Defaults: limit=50, offset=0. Connection config is opaque credential data.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum results to return (1-100, default 50)",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to skip (default 0)",
				},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Filter by active state",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Filter by integration type (e.g. 'slack', 'github')",
				},
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search over connection names",
				},
			},
		},
	}, s.handleListConnections)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_connection",
		Description: "Get one connection by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Connection id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetConnection)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_connection",
		Description: "Create a new connection. isActive defaults to true when omitted. The config object is passed through to the service unmodified.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Connection name (1-200 characters)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Integration type the connection belongs to",
				},
				"config": map[string]interface{}{
					"type":        "object",
					"description": "Integration-specific configuration (opaque, structure varies per type)",
				},
				"tools": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tool names the connection grants, in order",
				},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the connection is active (default: true)",
					"default":     true,
				},
			},
			Required: []string{"name", "type", "config"},
		},
	}, s.handleCreateConnection)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "update_connection",
		Description: "Replace a connection in full. Omitted optional fields reset to their defaults; use patch_connection to change individual fields.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Connection id",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Connection name (1-200 characters)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Integration type the connection belongs to",
				},
				"config": map[string]interface{}{
					"type":        "object",
					"description": "Integration-specific configuration (opaque, structure varies per type)",
				},
				"tools": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tool names the connection grants, in order",
				},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the connection is active (default: true)",
					"default":     true,
				},
			},
			Required: []string{"id", "name", "type", "config"},
		},
	}, s.handleUpdateConnection)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "patch_connection",
		Description: "Partially update a connection. Only the supplied fields change; everything else is left untouched.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Connection id",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New connection name (1-200 characters)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "New integration type",
				},
				"config": map[string]interface{}{
					"type":        "object",
					"description": "New configuration object",
				},
				"tools": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Replacement tool names",
				},
				"isActive": map[string]interface{}{
					"type":        "boolean",
					"description": "New active state",
				},
			},
			Required: []string{"id"},
		},
	}, s.handlePatchConnection)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_connection",
		Description: "Delete a connection.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Connection id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleDeleteConnection)
}

// handleListConnections implements the list_connections tool.
func (s *Server) handleListConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset, errRes := listWindow(request)
	if errRes != nil {
		return errRes, nil
	}

	opts := api.ConnectionListOptions{Limit: limit, Offset: offset}
	args := request.GetArguments()

	if raw, ok := args["isActive"]; ok {
		active, errRes := toBool("isActive", raw)
		if errRes != nil {
			return errRes, nil
		}
		opts.IsActive = &active
	}
	opts.Type = request.GetString("type", "")
	opts.Search = request.GetString("search", "")

	conns, meta, err := s.api.ListConnections(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}
	if conns == nil {
		conns = []api.Connection{}
	}

	return jsonResponse(connectionListPayload{Success: true, Connections: conns, Pagination: meta}), nil
}

// handleGetConnection implements the get_connection tool.
func (s *Server) handleGetConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	conn, err := s.api.GetConnection(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(connectionPayload{Success: true, Connection: *conn}), nil
}

// connectionRequestFromArgs assembles the shared create/update body.
func (s *Server) connectionRequestFromArgs(request mcp.CallToolRequest) (*api.CreateConnectionRequest, *mcp.CallToolResult) {
	name, err := request.RequireString("name")
	if err != nil {
		return nil, errorResponse("Missing or invalid 'name' argument")
	}
	if errRes := validateName(name); errRes != nil {
		return nil, errRes
	}

	connType, err := request.RequireString("type")
	if err != nil {
		return nil, errorResponse("Missing or invalid 'type' argument")
	}
	if connType == "" {
		return nil, validationError("type", "must be non-empty")
	}

	args := request.GetArguments()

	rawConfig, ok := args["config"]
	if !ok {
		return nil, errorResponse("Missing or invalid 'config' argument")
	}
	cfg, errRes := toObject("config", rawConfig)
	if errRes != nil {
		return nil, errRes
	}

	req := &api.CreateConnectionRequest{
		Name:     name,
		Type:     connType,
		Config:   cfg,
		IsActive: request.GetBool("isActive", true),
	}

	if raw, ok := args["tools"]; ok {
		tools, errRes := toStringSlice("tools", raw)
		if errRes != nil {
			return nil, errRes
		}
		req.Tools = tools
	}

	return req, nil
}

// handleCreateConnection implements the create_connection tool.
func (s *Server) handleCreateConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errRes := s.connectionRequestFromArgs(request)
	if errRes != nil {
		return errRes, nil
	}

	conn, err := s.api.CreateConnection(ctx, *req)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(connectionPayload{Success: true, Connection: *conn}), nil
}

// handleUpdateConnection implements the update_connection tool (full
// replacement semantics).
func (s *Server) handleUpdateConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	req, errRes := s.connectionRequestFromArgs(request)
	if errRes != nil {
		return errRes, nil
	}

	conn, err := s.api.UpdateConnection(ctx, id, api.UpdateConnectionRequest(*req))
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(connectionPayload{Success: true, Connection: *conn}), nil
}

// handlePatchConnection implements the patch_connection tool. The outbound
// payload contains exactly the caller-supplied fields.
func (s *Server) handlePatchConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	args := request.GetArguments()
	patch := make(map[string]any)

	if raw, ok := args["name"]; ok {
		name, errRes := toString("name", raw)
		if errRes != nil {
			return errRes, nil
		}
		if errRes := validateName(name); errRes != nil {
			return errRes, nil
		}
		patch["name"] = name
	}
	if raw, ok := args["type"]; ok {
		connType, errRes := toString("type", raw)
		if errRes != nil {
			return errRes, nil
		}
		if connType == "" {
			return validationError("type", "must be non-empty"), nil
		}
		patch["type"] = connType
	}
	if raw, ok := args["config"]; ok {
		cfg, errRes := toObject("config", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["config"] = cfg
	}
	if raw, ok := args["tools"]; ok {
		tools, errRes := toStringSlice("tools", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["tools"] = tools
	}
	if raw, ok := args["isActive"]; ok {
		active, errRes := toBool("isActive", raw)
		if errRes != nil {
			return errRes, nil
		}
		patch["isActive"] = active
	}

	if len(patch) == 0 {
		return validationError("", "no fields supplied to patch"), nil
	}

	conn, err := s.api.PatchConnection(ctx, id, patch)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(connectionPayload{Success: true, Connection: *conn}), nil
}

// handleDeleteConnection implements the delete_connection tool.
func (s *Server) handleDeleteConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	conn, err := s.api.DeleteConnection(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(connectionDeletedPayload{Success: true, Deleted: *conn}), nil
}
