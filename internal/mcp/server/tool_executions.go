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
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillbridge/skillbridge/internal/api"
)

// executionListPayload is the result of list_executions.
type executionListPayload struct {
	Success    bool            `json:"success"`
	Executions []api.Execution `json:"executions"`
	Pagination *api.Meta       `json:"pagination,omitempty"`
}

// executionPayload is the result of get_execution.
type executionPayload struct {
	Success   bool          `json:"success"`
	Execution api.Execution `json:"execution"`
}

// executionTracePayload is the result of get_execution_trace. Trace is the
// remote payload passed through verbatim.
type executionTracePayload struct {
	Success     bool            `json:"success"`
	ExecutionID string          `json:"executionId"`
	Trace       json.RawMessage `json:"trace"`
}

// executionStatsPayload is the result of get_execution_stats.
type executionStatsPayload struct {
	Success bool               `json:"success"`
	Stats   api.ExecutionStats `json:"stats"`
}

// executionDeletedPayload carries the identity of the removed execution.
type executionDeletedPayload struct {
	Success bool          `json:"success"`
	Deleted api.Execution `json:"deleted"`
}

// registerExecutionTools registers the five execution tools.
func (s *Server) registerExecutionTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_executions",
		Description: "List skill execution records with optional filters. Defaults: limit=50, offset=0.",
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
				"skillId": map[string]interface{}{
					"type":        "string",
					"description": "Filter by the skill that was executed",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"running", "completed", "failed"},
					"description": "Filter by execution status",
				},
			},
		},
	}, s.handleListExecutions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_execution",
		Description: "Get one execution record by id, including input, output, and error details.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Execution id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetExecution)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_execution_trace",
		Description: "Get the step-by-step trace of one execution.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Execution id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetExecutionTrace)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_execution_stats",
		Description: "Get aggregate execution statistics: totals, success rate, cost, and per-skill and per-day breakdowns.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"skillId": map[string]interface{}{
					"type":        "string",
					"description": "Restrict stats to one skill",
				},
				"days": map[string]interface{}{
					"type":        "integer",
					"description": "Restrict stats to the last N days",
				},
			},
		},
	}, s.handleGetExecutionStats)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_execution",
		Description: "Delete one execution record.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Execution id",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleDeleteExecution)
}

// handleListExecutions implements the list_executions tool.
func (s *Server) handleListExecutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset, errRes := listWindow(request)
	if errRes != nil {
		return errRes, nil
	}

	opts := api.ExecutionListOptions{Limit: limit, Offset: offset}
	opts.SkillID = request.GetString("skillId", "")
	if status := request.GetString("status", ""); status != "" {
		if !validExecutionStatus(status) {
			return validationError("status", "must be one of running, completed, failed"), nil
		}
		opts.Status = status
	}

	execs, meta, err := s.api.ListExecutions(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}
	if execs == nil {
		execs = []api.Execution{}
	}

	return jsonResponse(executionListPayload{Success: true, Executions: execs, Pagination: meta}), nil
}

// handleGetExecution implements the get_execution tool.
func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	exec, err := s.api.GetExecution(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(executionPayload{Success: true, Execution: *exec}), nil
}

// handleGetExecutionTrace implements the get_execution_trace tool.
func (s *Server) handleGetExecutionTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	trace, err := s.api.GetExecutionTrace(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(executionTracePayload{Success: true, ExecutionID: id, Trace: trace}), nil
}

// handleGetExecutionStats implements the get_execution_stats tool.
func (s *Server) handleGetExecutionStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := api.ExecutionStatsOptions{
		SkillID: request.GetString("skillId", ""),
	}
	if _, ok := request.GetArguments()["days"]; ok {
		days := request.GetInt("days", 0)
		if days < 1 {
			return validationError("days", "must be >= 1"), nil
		}
		opts.Days = days
	}

	stats, err := s.api.GetExecutionStats(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(executionStatsPayload{Success: true, Stats: *stats}), nil
}

// handleDeleteExecution implements the delete_execution tool.
func (s *Server) handleDeleteExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(request, "id")
	if errRes != nil {
		return errRes, nil
	}

	exec, err := s.api.DeleteExecution(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResponse(executionDeletedPayload{Success: true, Deleted: *exec}), nil
}
